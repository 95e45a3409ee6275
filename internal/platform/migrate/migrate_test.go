package migrate

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/phrazzld/chemlab-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()

	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestRun_UpAndDownSQLite(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	var buf bytes.Buffer
	log := logger.SetupWithWriter(&buf, "debug")

	require.NoError(t, Up(ctx, db, DialectSQLite, log))
	assert.True(t, tableExists(t, db, "learners"))
	assert.True(t, tableExists(t, db, "progress_history"))
	assert.True(t, tableExists(t, db, TableName))

	version, err := CurrentVersion(ctx, db, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// Applying again is a no-op.
	require.NoError(t, Run(ctx, db, DialectSQLite, CommandUp, log))

	require.NoError(t, Run(ctx, db, DialectSQLite, CommandDown, log))
	assert.False(t, tableExists(t, db, "progress_history"))
	assert.True(t, tableExists(t, db, "learners"))

	version, err = CurrentVersion(ctx, db, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, Run(ctx, db, DialectSQLite, CommandStatus, log))
	assert.Contains(t, buf.String(), `"component":"migrations"`)
}

func TestRun_Reset(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	require.NoError(t, Up(ctx, db, DialectSQLite, nil))
	require.NoError(t, Run(ctx, db, DialectSQLite, CommandReset, nil))
	assert.False(t, tableExists(t, db, "learners"))
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	assert.ErrorIs(t, Run(ctx, db, DialectSQLite, "create", nil), ErrUnknownCommand)
	assert.ErrorIs(t, Run(ctx, db, Dialect("mysql"), CommandUp, nil), ErrUnknownDialect)
	assert.Error(t, Run(ctx, nil, DialectSQLite, CommandUp, nil))

	_, err := CurrentVersion(ctx, db, Dialect("mysql"))
	assert.ErrorIs(t, err, ErrUnknownDialect)
}

func TestEmbeddedMigrationsPaired(t *testing.T) {
	pg, err := migrations.ReadDir(string(DialectPostgres))
	require.NoError(t, err)
	lite, err := migrations.ReadDir(string(DialectSQLite))
	require.NoError(t, err)

	require.Equal(t, len(pg), len(lite))
	for i := range pg {
		assert.Equal(t, pg[i].Name(), lite[i].Name())
	}
}
