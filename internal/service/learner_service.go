package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/events"
	"github.com/phrazzld/chemlab-api/internal/session"
	"github.com/phrazzld/chemlab-api/internal/store"
)

// LearnerService registers learners and hands out their workspaces.
type LearnerService interface {
	// Register creates a learner with starting progress and returns its id.
	Register(ctx context.Context) (uuid.UUID, error)

	// Workspace returns the learner's workspace, loading saved progress on
	// first access. Returns ErrLearnerNotFound for an unknown id.
	Workspace(ctx context.Context, learnerID uuid.UUID) (*session.Workspace, error)

	// History returns the learner's saved progress snapshots.
	History(ctx context.Context, learnerID uuid.UUID) ([]store.ProgressSnapshot, error)

	// EvictIdle unmounts and forgets workspaces unused for longer than
	// maxIdle and returns how many were evicted. Progress is reloaded from
	// the store on the next access.
	EvictIdle(ctx context.Context, maxIdle time.Duration) int

	// Close unmounts every workspace, releasing held cameras.
	Close()
}

// workspaceEntry tracks when a cached workspace was last handed out.
type workspaceEntry struct {
	ws       *session.Workspace
	lastUsed time.Time
}

// LearnerServiceImpl implements LearnerService.
type LearnerServiceImpl struct {
	store   store.ProgressStore
	emitter events.EventEmitter
	deps    session.Deps
	logger  *slog.Logger

	now func() time.Time

	mu         sync.Mutex
	workspaces map[uuid.UUID]*workspaceEntry
	closed     bool
}

var _ LearnerService = (*LearnerServiceImpl)(nil)

// NewLearnerService creates a LearnerService. emitter receives progress
// events from every learner's progression and may be nil.
func NewLearnerService(
	progressStore store.ProgressStore,
	emitter events.EventEmitter,
	deps session.Deps,
) (*LearnerServiceImpl, error) {
	if progressStore == nil {
		return nil, errors.New("progress store cannot be nil")
	}
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	return &LearnerServiceImpl{
		store:      progressStore,
		emitter:    emitter,
		deps:       deps,
		logger:     deps.Logger.With("component", "learner_service"),
		now:        time.Now,
		workspaces: make(map[uuid.UUID]*workspaceEntry),
	}, nil
}

// Register implements LearnerService.
func (s *LearnerServiceImpl) Register(ctx context.Context) (uuid.UUID, error) {
	learnerID := uuid.New()
	if err := s.store.CreateLearner(ctx, learnerID, domain.NewUserProgress()); err != nil {
		s.logger.ErrorContext(ctx, "failed to register learner",
			"error", err,
			"learner_id", learnerID)
		return uuid.Nil, fmt.Errorf("failed to register learner: %w", err)
	}

	s.logger.InfoContext(ctx, "learner registered", "learner_id", learnerID)
	return learnerID, nil
}

// Workspace implements LearnerService.
func (s *LearnerServiceImpl) Workspace(
	ctx context.Context,
	learnerID uuid.UUID,
) (*session.Workspace, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrServiceClosed
	}
	if entry, ok := s.workspaces[learnerID]; ok {
		entry.lastUsed = s.now()
		s.mu.Unlock()
		return entry.ws, nil
	}
	s.mu.Unlock()

	progress, err := s.store.GetProgress(ctx, learnerID)
	if err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrLearnerNotFound, learnerID)
		}
		s.logger.ErrorContext(ctx, "failed to load learner progress",
			"error", err,
			"learner_id", learnerID)
		return nil, fmt.Errorf("failed to load learner progress: %w", err)
	}

	progression, err := session.NewProgression(learnerID, progress, s.emitter, s.deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to restore progression: %w", err)
	}
	ws, err := session.NewWorkspace(learnerID, progression, s.deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrServiceClosed
	}
	// Another request may have loaded the same learner meanwhile.
	if existing, ok := s.workspaces[learnerID]; ok {
		existing.lastUsed = s.now()
		return existing.ws, nil
	}
	s.workspaces[learnerID] = &workspaceEntry{ws: ws, lastUsed: s.now()}
	s.logger.DebugContext(ctx, "workspace loaded",
		"learner_id", learnerID,
		"xp", progress.XP,
		"level", progress.Level)
	return ws, nil
}

// History implements LearnerService.
func (s *LearnerServiceImpl) History(
	ctx context.Context,
	learnerID uuid.UUID,
) ([]store.ProgressSnapshot, error) {
	history, err := s.store.History(ctx, learnerID)
	if err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrLearnerNotFound, learnerID)
		}
		return nil, fmt.Errorf("failed to load progress history: %w", err)
	}
	return history, nil
}

// EvictIdle implements LearnerService.
func (s *LearnerServiceImpl) EvictIdle(ctx context.Context, maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	var idle []*session.Workspace
	for id, entry := range s.workspaces {
		if entry.lastUsed.Before(cutoff) {
			idle = append(idle, entry.ws)
			delete(s.workspaces, id)
		}
	}
	remaining := len(s.workspaces)
	s.mu.Unlock()

	for _, ws := range idle {
		ws.Close()
	}
	if len(idle) > 0 {
		s.logger.InfoContext(ctx, "evicted idle workspaces",
			"evicted", len(idle),
			"remaining", remaining)
	}
	return len(idle)
}

// RunEviction calls EvictIdle every interval until ctx is cancelled.
func (s *LearnerServiceImpl) RunEviction(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle(ctx, maxIdle)
		}
	}
}

// Close implements LearnerService.
func (s *LearnerServiceImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, entry := range s.workspaces {
		entry.ws.Close()
		delete(s.workspaces, id)
	}
	s.logger.Info("learner service closed")
}
