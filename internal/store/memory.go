package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/domain"
)

// MemoryProgressStore keeps progress in process memory. It is used when no
// database is configured and in tests.
type MemoryProgressStore struct {
	mu       sync.RWMutex
	learners map[uuid.UUID][]ProgressSnapshot
	now      func() time.Time
}

var _ ProgressStore = (*MemoryProgressStore)(nil)

// NewMemoryProgressStore creates an empty MemoryProgressStore.
func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{
		learners: make(map[uuid.UUID][]ProgressSnapshot),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateLearner implements ProgressStore.
func (s *MemoryProgressStore) CreateLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	progress domain.UserProgress,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateProgress(progress); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.learners[learnerID]; ok {
		return ErrLearnerExists
	}
	s.learners[learnerID] = []ProgressSnapshot{{Progress: progress, SavedAt: s.now()}}
	return nil
}

// GetProgress implements ProgressStore.
func (s *MemoryProgressStore) GetProgress(
	ctx context.Context,
	learnerID uuid.UUID,
) (domain.UserProgress, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserProgress{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.learners[learnerID]
	if !ok {
		return domain.UserProgress{}, ErrLearnerNotFound
	}
	return history[len(history)-1].Progress, nil
}

// SaveProgress implements ProgressStore.
func (s *MemoryProgressStore) SaveProgress(
	ctx context.Context,
	learnerID uuid.UUID,
	progress domain.UserProgress,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateProgress(progress); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.learners[learnerID]
	if !ok {
		return ErrLearnerNotFound
	}
	s.learners[learnerID] = append(history, ProgressSnapshot{Progress: progress, SavedAt: s.now()})
	return nil
}

// History implements ProgressStore.
func (s *MemoryProgressStore) History(
	ctx context.Context,
	learnerID uuid.UUID,
) ([]ProgressSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.learners[learnerID]
	if !ok {
		return nil, ErrLearnerNotFound
	}
	out := make([]ProgressSnapshot, len(history))
	copy(out, history)
	return out, nil
}
