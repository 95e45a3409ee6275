package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/domain"
)

// ProgressStore persists learner progress snapshots.
//
// Implementations must:
//   - return ErrLearnerExists from CreateLearner for a known id
//   - return ErrLearnerNotFound from GetProgress and SaveProgress for an unknown id
//   - reject snapshots that fail domain validation with ErrInvalidEntity
type ProgressStore interface {
	// CreateLearner records a new learner with its initial progress.
	CreateLearner(ctx context.Context, learnerID uuid.UUID, progress domain.UserProgress) error

	// GetProgress returns the latest saved progress for the learner.
	GetProgress(ctx context.Context, learnerID uuid.UUID) (domain.UserProgress, error)

	// SaveProgress replaces the learner's progress and appends it to the history.
	SaveProgress(ctx context.Context, learnerID uuid.UUID, progress domain.UserProgress) error

	// History returns the learner's saved snapshots, oldest first.
	History(ctx context.Context, learnerID uuid.UUID) ([]ProgressSnapshot, error)
}

// ProgressSnapshot is one saved progress value.
type ProgressSnapshot struct {
	Progress domain.UserProgress
	SavedAt  time.Time
}

// ValidateProgress wraps a domain validation failure in ErrInvalidEntity.
func ValidateProgress(progress domain.UserProgress) error {
	if err := progress.Validate(); err != nil {
		return NewStoreError("learner", "validate", "invalid progress", errors.Join(ErrInvalidEntity, err))
	}
	return nil
}
