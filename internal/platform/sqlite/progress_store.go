package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/store"
)

// Open opens the SQLite database at path with WAL journaling and foreign
// keys enabled and verifies the connection.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	cleanPath := filepath.Clean(strings.TrimSpace(path))
	if cleanPath == "" || cleanPath == "." {
		return nil, errors.New("sqlite path is required")
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return db, nil
}

// SQLiteProgressStore implements store.ProgressStore on SQLite.
type SQLiteProgressStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ store.ProgressStore = (*SQLiteProgressStore)(nil)

// NewSQLiteProgressStore creates a store over db. If logger is nil, the
// default logger is used.
func NewSQLiteProgressStore(db *sql.DB, logger *slog.Logger) (*SQLiteProgressStore, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
		now:    time.Now,
	}, nil
}

// CreateLearner implements store.ProgressStore.
func (s *SQLiteProgressStore) CreateLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	progress domain.UserProgress,
) error {
	if err := store.ValidateProgress(progress); err != nil {
		return err
	}

	now := s.now().UTC().UnixMilli()
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO learners (id, xp, level, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			learnerID.String(), progress.XP, progress.Level, now, now)
		if err != nil {
			if IsUniqueViolation(err) {
				return store.ErrLearnerExists
			}
			s.logger.Error("failed to insert learner",
				slog.String("learner_id", learnerID.String()),
				slog.String("error", err.Error()))
			return store.NewStoreError("learner", "create", "insert failed", MapError(err))
		}
		return insertHistory(ctx, tx, learnerID, progress, now)
	})
}

// GetProgress implements store.ProgressStore.
func (s *SQLiteProgressStore) GetProgress(
	ctx context.Context,
	learnerID uuid.UUID,
) (domain.UserProgress, error) {
	var progress domain.UserProgress
	err := s.db.QueryRowContext(ctx,
		`SELECT xp, level FROM learners WHERE id = ?`, learnerID.String()).
		Scan(&progress.XP, &progress.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProgress{}, store.ErrLearnerNotFound
	}
	if err != nil {
		return domain.UserProgress{}, store.NewStoreError("learner", "get", "query failed", MapError(err))
	}
	return progress, nil
}

// SaveProgress implements store.ProgressStore.
func (s *SQLiteProgressStore) SaveProgress(
	ctx context.Context,
	learnerID uuid.UUID,
	progress domain.UserProgress,
) error {
	if err := store.ValidateProgress(progress); err != nil {
		return err
	}

	now := s.now().UTC().UnixMilli()
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE learners SET xp = ?, level = ?, updated_at = ? WHERE id = ?`,
			progress.XP, progress.Level, now, learnerID.String())
		if err != nil {
			return store.NewStoreError("learner", "save", "update failed", MapError(err))
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return store.ErrLearnerNotFound
		}
		return insertHistory(ctx, tx, learnerID, progress, now)
	})
}

// History implements store.ProgressStore.
func (s *SQLiteProgressStore) History(
	ctx context.Context,
	learnerID uuid.UUID,
) ([]store.ProgressSnapshot, error) {
	if _, err := s.GetProgress(ctx, learnerID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT xp, level, saved_at FROM progress_history WHERE learner_id = ? ORDER BY id`,
		learnerID.String())
	if err != nil {
		return nil, store.NewStoreError("learner", "history", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var history []store.ProgressSnapshot
	for rows.Next() {
		var (
			snap    store.ProgressSnapshot
			savedAt int64
		)
		if err := rows.Scan(&snap.Progress.XP, &snap.Progress.Level, &savedAt); err != nil {
			return nil, store.NewStoreError("learner", "history", "scan failed", err)
		}
		snap.SavedAt = time.UnixMilli(savedAt).UTC()
		history = append(history, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("learner", "history", "iteration failed", MapError(err))
	}
	return history, nil
}

func insertHistory(
	ctx context.Context,
	db store.DBTX,
	learnerID uuid.UUID,
	progress domain.UserProgress,
	savedAt int64,
) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO progress_history (learner_id, xp, level, saved_at) VALUES (?, ?, ?, ?)`,
		learnerID.String(), progress.XP, progress.Level, savedAt)
	if err != nil {
		return store.NewStoreError("learner", "history", "insert failed", MapError(err))
	}
	return nil
}
