// Package testdb opens migrated databases for tests.
//
// SQLite databases are created in the test's temporary directory and are
// always available. PostgreSQL tests run only when CHEMLAB_TEST_DATABASE_URL
// is set; otherwise they are skipped, and in CI the missing URL is logged as
// an error first.
//
//	func TestStore(t *testing.T) {
//	    db := testdb.OpenPostgres(t)
//	    s, err := postgres.NewPostgresProgressStore(db, nil)
//	    require.NoError(t, err)
//	    ...
//	}
package testdb
