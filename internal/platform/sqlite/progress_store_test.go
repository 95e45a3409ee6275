package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/platform/migrate"
	"github.com/phrazzld/chemlab-api/internal/store"
	"github.com/phrazzld/chemlab-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) (*SQLiteProgressStore, *sql.DB) {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "chemlab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrate.Up(ctx, db, migrate.DialectSQLite, nil))

	s, err := NewSQLiteProgressStore(db, nil)
	require.NoError(t, err)
	return s, db
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.Error(t, err)
}

func TestNewSQLiteProgressStore_NilDB(t *testing.T) {
	_, err := NewSQLiteProgressStore(nil, nil)
	assert.Error(t, err)
}

func TestSQLiteProgressStore_Lifecycle(t *testing.T) {
	s, _ := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ctx := context.Background()
	id := uuid.New()

	_, err := s.GetProgress(ctx, id)
	assert.ErrorIs(t, err, store.ErrLearnerNotFound)
	assert.ErrorIs(t, s.SaveProgress(ctx, id, domain.NewUserProgress()), store.ErrLearnerNotFound)
	_, err = s.History(ctx, id)
	assert.ErrorIs(t, err, store.ErrLearnerNotFound)

	require.NoError(t, s.CreateLearner(ctx, id, domain.NewUserProgress()))
	assert.ErrorIs(t, s.CreateLearner(ctx, id, domain.NewUserProgress()), store.ErrLearnerExists)

	require.NoError(t, s.SaveProgress(ctx, id, domain.UserProgress{XP: 120, Level: 2}))
	require.NoError(t, s.SaveProgress(ctx, id, domain.UserProgress{XP: 210, Level: 2}))

	got, err := s.GetProgress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.UserProgress{XP: 210, Level: 2}, got)

	history, err := s.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domain.NewUserProgress(), history[0].Progress)
	assert.Equal(t, domain.UserProgress{XP: 120, Level: 2}, history[1].Progress)
	assert.True(t, history[2].SavedAt.Equal(now))
}

func TestSQLiteProgressStore_RejectsInvalidProgress(t *testing.T) {
	s, _ := openTempStore(t)
	ctx := context.Background()
	id := uuid.New()

	assert.ErrorIs(t, s.CreateLearner(ctx, id, domain.UserProgress{XP: 0, Level: 0}), store.ErrInvalidEntity)
	require.NoError(t, s.CreateLearner(ctx, id, domain.NewUserProgress()))
	assert.ErrorIs(t, s.SaveProgress(ctx, id, domain.UserProgress{XP: -10, Level: 1}), store.ErrInvalidEntity)
}

func TestSQLiteProgressStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")
	id := uuid.New()

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, migrate.Up(ctx, db, migrate.DialectSQLite, nil))
	s, err := NewSQLiteProgressStore(db, nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateLearner(ctx, id, domain.NewUserProgress()))
	require.NoError(t, s.SaveProgress(ctx, id, domain.UserProgress{XP: 75, Level: 1}))
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	s, err = NewSQLiteProgressStore(db, nil)
	require.NoError(t, err)

	got, err := s.GetProgress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.UserProgress{XP: 75, Level: 1}, got)
}

func TestMapError_Constraints(t *testing.T) {
	db := testdb.OpenSQLite(t)
	ctx := context.Background()
	id := uuid.New().String()

	_, err := db.ExecContext(ctx,
		`INSERT INTO learners (id, xp, level, created_at, updated_at) VALUES (?, 0, 1, 0, 0)`, id)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO learners (id, xp, level, created_at, updated_at) VALUES (?, 0, 1, 0, 0)`, id)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.ErrorIs(t, MapError(err), store.ErrDuplicate)

	_, err = db.ExecContext(ctx,
		`INSERT INTO learners (id, xp, level, created_at, updated_at) VALUES (?, -1, 1, 0, 0)`, uuid.New().String())
	require.Error(t, err)
	assert.False(t, IsUniqueViolation(err))
	assert.ErrorIs(t, MapError(err), store.ErrInvalidEntity)

	_, err = db.ExecContext(ctx,
		`INSERT INTO progress_history (learner_id, xp, level, saved_at) VALUES (?, 0, 1, 0)`, uuid.New().String())
	require.Error(t, err)
	assert.ErrorIs(t, MapError(err), store.ErrInvalidEntity)

	assert.ErrorIs(t, MapError(sql.ErrNoRows), store.ErrNotFound)
	assert.NoError(t, MapError(nil))
	plain := errors.New("plain")
	assert.Equal(t, plain, MapError(plain))
}
