package testdb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/chemlab-api/internal/platform/migrate"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // sqlite driver
)

// OpenPostgres connects to the test database, applies migrations, and
// closes the connection when the test ends. The test is skipped when no
// database URL is configured.
func OpenPostgres(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skipf("%s not set; skipping PostgreSQL test", EnvTestDatabaseURL)
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { closeDB(t, db) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")
	require.NoError(t, migrate.Up(ctx, db, migrate.DialectPostgres, nil), "failed to migrate test database")
	return db
}

// OpenSQLite creates a migrated SQLite database in the test's temporary
// directory with foreign keys enforced.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(ON)")
	require.NoError(t, err, "failed to open sqlite test database")
	t.Cleanup(func() { closeDB(t, db) })

	require.NoError(t, migrate.Up(context.Background(), db, migrate.DialectSQLite, nil),
		"failed to migrate sqlite test database")
	return db
}

// WithTx runs fn in a transaction that is rolled back afterwards, so fn
// leaves no data behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()
	fn(t, tx)
}

func closeDB(t *testing.T, db *sql.DB) {
	if err := db.Close(); err != nil {
		t.Logf("failed to close test database: %v", err)
	}
}
