package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/store"
)

// MockProgressStore implements store.ProgressStore for testing. Methods
// without a function set delegate to an in-memory store.
type MockProgressStore struct {
	CreateLearnerFn func(ctx context.Context, learnerID uuid.UUID, progress domain.UserProgress) error
	GetProgressFn   func(ctx context.Context, learnerID uuid.UUID) (domain.UserProgress, error)
	SaveProgressFn  func(ctx context.Context, learnerID uuid.UUID, progress domain.UserProgress) error
	HistoryFn       func(ctx context.Context, learnerID uuid.UUID) ([]store.ProgressSnapshot, error)

	once    sync.Once
	backing *store.MemoryProgressStore

	mu    sync.Mutex
	saves []domain.UserProgress
}

var _ store.ProgressStore = (*MockProgressStore)(nil)

func (m *MockProgressStore) memory() *store.MemoryProgressStore {
	m.once.Do(func() { m.backing = store.NewMemoryProgressStore() })
	return m.backing
}

// CreateLearner implements store.ProgressStore.
func (m *MockProgressStore) CreateLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	progress domain.UserProgress,
) error {
	if m.CreateLearnerFn != nil {
		return m.CreateLearnerFn(ctx, learnerID, progress)
	}
	return m.memory().CreateLearner(ctx, learnerID, progress)
}

// GetProgress implements store.ProgressStore.
func (m *MockProgressStore) GetProgress(
	ctx context.Context,
	learnerID uuid.UUID,
) (domain.UserProgress, error) {
	if m.GetProgressFn != nil {
		return m.GetProgressFn(ctx, learnerID)
	}
	return m.memory().GetProgress(ctx, learnerID)
}

// SaveProgress implements store.ProgressStore and records the saved value.
func (m *MockProgressStore) SaveProgress(
	ctx context.Context,
	learnerID uuid.UUID,
	progress domain.UserProgress,
) error {
	m.mu.Lock()
	m.saves = append(m.saves, progress)
	m.mu.Unlock()

	if m.SaveProgressFn != nil {
		return m.SaveProgressFn(ctx, learnerID, progress)
	}
	return m.memory().SaveProgress(ctx, learnerID, progress)
}

// History implements store.ProgressStore.
func (m *MockProgressStore) History(
	ctx context.Context,
	learnerID uuid.UUID,
) ([]store.ProgressSnapshot, error) {
	if m.HistoryFn != nil {
		return m.HistoryFn(ctx, learnerID)
	}
	return m.memory().History(ctx, learnerID)
}

// Saves returns every progress value passed to SaveProgress.
func (m *MockProgressStore) Saves() []domain.UserProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.UserProgress(nil), m.saves...)
}
