package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/catalog"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/events"
	"github.com/phrazzld/chemlab-api/internal/mocks"
	"github.com/phrazzld/chemlab-api/internal/session"
	"github.com/phrazzld/chemlab-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps() session.Deps {
	return session.Deps{
		Catalog:    catalog.MustDefault(),
		Assistant:  &mocks.MockAssistant{Reaction: "Neutralisation forms salt and water."},
		Dispatcher: &mocks.MockDispatcher{},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func newTestService(t *testing.T, ps store.ProgressStore) *LearnerServiceImpl {
	t.Helper()

	deps := testDeps()
	emitter := events.NewInMemoryEventEmitter(deps.Logger)
	handler, err := events.NewProgressHandler(ps, nil, deps.Logger)
	require.NoError(t, err)
	emitter.RegisterHandler(handler)

	svc, err := NewLearnerService(ps, emitter, deps)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestNewLearnerService_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewLearnerService(nil, nil, testDeps())
	assert.Error(t, err)

	deps := testDeps()
	deps.Assistant = nil
	_, err = NewLearnerService(store.NewMemoryProgressStore(), nil, deps)
	assert.Error(t, err)
}

func TestLearnerService_RegisterAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ps := &mocks.MockProgressStore{}
	svc := newTestService(t, ps)

	id, err := svc.Register(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	ws, err := svc.Workspace(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, ws.LearnerID())
	assert.Equal(t, domain.NewUserProgress(), ws.Progression().Get())

	again, err := svc.Workspace(ctx, id)
	require.NoError(t, err)
	assert.Same(t, ws, again)
}

func TestLearnerService_RestoresSavedProgress(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ps := store.NewMemoryProgressStore()
	id := uuid.New()
	require.NoError(t, ps.CreateLearner(ctx, id, domain.UserProgress{XP: 180, Level: 2}))

	svc := newTestService(t, ps)
	ws, err := svc.Workspace(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.UserProgress{XP: 180, Level: 2}, ws.Progression().Get())
}

func TestLearnerService_PersistsAwards(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ps := &mocks.MockProgressStore{}
	svc := newTestService(t, ps)

	id, err := svc.Register(ctx)
	require.NoError(t, err)
	ws, err := svc.Workspace(ctx, id)
	require.NoError(t, err)

	require.True(t, ws.Navigate(ctx, domain.ViewLab))
	lab, err := ws.Lab()
	require.NoError(t, err)
	_, err = lab.AddItem(domain.ItemChemical, "hcl")
	require.NoError(t, err)
	_, err = lab.AddItem(domain.ItemChemical, "naoh")
	require.NoError(t, err)

	accepted, err := lab.SimulateReaction(ctx)
	require.NoError(t, err)
	require.True(t, accepted)

	assert.Equal(t, []domain.UserProgress{{XP: 50, Level: 1}}, ps.Saves())

	history, err := svc.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 50, history[1].Progress.XP)
}

func TestLearnerService_UnknownLearner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryProgressStore())

	_, err := svc.Workspace(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrLearnerNotFound)

	_, err = svc.History(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrLearnerNotFound)
}

func TestLearnerService_StoreFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("disk full")
	ps := &mocks.MockProgressStore{
		CreateLearnerFn: func(context.Context, uuid.UUID, domain.UserProgress) error { return boom },
		GetProgressFn: func(context.Context, uuid.UUID) (domain.UserProgress, error) {
			return domain.UserProgress{}, boom
		},
	}
	svc := newTestService(t, ps)

	_, err := svc.Register(ctx)
	assert.ErrorIs(t, err, boom)

	_, err = svc.Workspace(ctx, uuid.New())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrLearnerNotFound)
}

func TestLearnerService_Close(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryProgressStore())
	id, err := svc.Register(ctx)
	require.NoError(t, err)

	ws, err := svc.Workspace(ctx, id)
	require.NoError(t, err)
	require.True(t, ws.Navigate(ctx, domain.ViewTheory))

	svc.Close()
	svc.Close()

	_, err = ws.Quiz()
	assert.ErrorIs(t, err, session.ErrViewNotActive)

	_, err = svc.Workspace(ctx, id)
	assert.ErrorIs(t, err, ErrServiceClosed)
}

func TestLearnerService_EvictIdle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ps := store.NewMemoryProgressStore()
	svc := newTestService(t, ps)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	idleID, err := svc.Register(ctx)
	require.NoError(t, err)
	activeID, err := svc.Register(ctx)
	require.NoError(t, err)

	idle, err := svc.Workspace(ctx, idleID)
	require.NoError(t, err)
	require.True(t, idle.Navigate(ctx, domain.ViewLab))
	lab, err := idle.Lab()
	require.NoError(t, err)
	_, _ = lab.AddItem(domain.ItemChemical, "hcl")
	_, _ = lab.AddItem(domain.ItemChemical, "naoh")
	_, err = lab.SimulateReaction(ctx)
	require.NoError(t, err)

	_, err = svc.Workspace(ctx, activeID)
	require.NoError(t, err)

	clock = clock.Add(20 * time.Minute)
	active, err := svc.Workspace(ctx, activeID)
	require.NoError(t, err)

	clock = clock.Add(15 * time.Minute)
	assert.Equal(t, 1, svc.EvictIdle(ctx, 30*time.Minute))

	_, err = idle.Lab()
	assert.ErrorIs(t, err, session.ErrViewNotActive, "eviction unmounts the workspace")

	again, err := svc.Workspace(ctx, activeID)
	require.NoError(t, err)
	assert.Same(t, active, again, "recently used workspace is kept")

	reloaded, err := svc.Workspace(ctx, idleID)
	require.NoError(t, err)
	assert.NotSame(t, idle, reloaded)
	assert.Equal(t, domain.UserProgress{XP: domain.ReactionXPBonus, Level: 1}, reloaded.Progression().Get(),
		"progress is restored from the store")

	assert.Zero(t, svc.EvictIdle(ctx, 30*time.Minute))
}

func TestLearnerService_RunEviction(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	svc := newTestService(t, store.NewMemoryProgressStore())
	id, err := svc.Register(ctx)
	require.NoError(t, err)
	ws, err := svc.Workspace(ctx, id)
	require.NoError(t, err)
	require.True(t, ws.Navigate(ctx, domain.ViewTheory))

	done := make(chan struct{})
	go func() {
		svc.RunEviction(ctx, 5*time.Millisecond, time.Nanosecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, err := ws.Quiz()
		return errors.Is(err, session.ErrViewNotActive)
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("eviction loop did not stop")
	}
}
