package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/store"
)

// Open connects to PostgreSQL through the pgx driver and verifies the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// PostgresProgressStore implements store.ProgressStore on PostgreSQL.
type PostgresProgressStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// NewPostgresProgressStore creates a store over db. If logger is nil, the
// default logger is used.
func NewPostgresProgressStore(db *sql.DB, logger *slog.Logger) (*PostgresProgressStore, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}, nil
}

// CreateLearner implements store.ProgressStore.
func (s *PostgresProgressStore) CreateLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	progress domain.UserProgress,
) error {
	if err := store.ValidateProgress(progress); err != nil {
		return err
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO learners (id, xp, level) VALUES ($1, $2, $3)`,
			learnerID, progress.XP, progress.Level)
		if err != nil {
			if IsUniqueViolation(err) {
				return store.ErrLearnerExists
			}
			s.logger.Error("failed to insert learner",
				slog.String("learner_id", learnerID.String()),
				slog.String("error", err.Error()))
			return store.NewStoreError("learner", "create", "insert failed", MapError(err))
		}
		return insertHistory(ctx, tx, learnerID, progress)
	})
}

// GetProgress implements store.ProgressStore.
func (s *PostgresProgressStore) GetProgress(
	ctx context.Context,
	learnerID uuid.UUID,
) (domain.UserProgress, error) {
	var progress domain.UserProgress
	err := s.db.QueryRowContext(ctx,
		`SELECT xp, level FROM learners WHERE id = $1`, learnerID).
		Scan(&progress.XP, &progress.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProgress{}, store.ErrLearnerNotFound
	}
	if err != nil {
		return domain.UserProgress{}, store.NewStoreError("learner", "get", "query failed", MapError(err))
	}
	return progress, nil
}

// SaveProgress implements store.ProgressStore. The learner row and the
// history entry are written in one transaction.
func (s *PostgresProgressStore) SaveProgress(
	ctx context.Context,
	learnerID uuid.UUID,
	progress domain.UserProgress,
) error {
	if err := store.ValidateProgress(progress); err != nil {
		return err
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE learners SET xp = $2, level = $3, updated_at = NOW() WHERE id = $1`,
			learnerID, progress.XP, progress.Level)
		if err != nil {
			return store.NewStoreError("learner", "save", "update failed", MapError(err))
		}
		if err := CheckRowsAffected(result, store.ErrLearnerNotFound); err != nil {
			return err
		}
		return insertHistory(ctx, tx, learnerID, progress)
	})
}

// History implements store.ProgressStore.
func (s *PostgresProgressStore) History(
	ctx context.Context,
	learnerID uuid.UUID,
) ([]store.ProgressSnapshot, error) {
	if _, err := s.GetProgress(ctx, learnerID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT xp, level, saved_at FROM progress_history WHERE learner_id = $1 ORDER BY id`,
		learnerID)
	if err != nil {
		return nil, store.NewStoreError("learner", "history", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var history []store.ProgressSnapshot
	for rows.Next() {
		var snap store.ProgressSnapshot
		if err := rows.Scan(&snap.Progress.XP, &snap.Progress.Level, &snap.SavedAt); err != nil {
			return nil, store.NewStoreError("learner", "history", "scan failed", err)
		}
		snap.SavedAt = snap.SavedAt.UTC()
		history = append(history, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("learner", "history", "iteration failed", MapError(err))
	}
	return history, nil
}

func insertHistory(ctx context.Context, db store.DBTX, learnerID uuid.UUID, progress domain.UserProgress) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO progress_history (learner_id, xp, level) VALUES ($1, $2, $3)`,
		learnerID, progress.XP, progress.Level)
	if err != nil {
		return store.NewStoreError("learner", "history", "insert failed", MapError(err))
	}
	return nil
}
