package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/events"
)

// Progression owns one learner's XP and level. It is the only writer of that
// progress and emits a ProgressEvent after each award.
type Progression struct {
	mu        sync.Mutex
	learnerID uuid.UUID
	progress  domain.UserProgress
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewProgression creates a store seeded with initial. emitter may be nil.
func NewProgression(
	learnerID uuid.UUID,
	initial domain.UserProgress,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*Progression, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &Progression{
		learnerID: learnerID,
		progress:  initial,
		emitter:   emitter,
		logger:    logger.With("component", "progression", "learner_id", learnerID),
	}, nil
}

// Get returns the current progress.
func (p *Progression) Get() domain.UserProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// AddXP awards amount and reports the new progress and whether the learner
// levelled up. Non-positive amounts are rejected and change nothing.
// Events are emitted while the lock is held so handlers observe awards in order.
func (p *Progression) AddXP(
	ctx context.Context,
	source domain.XPSource,
	amount int,
) (domain.UserProgress, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, levelled, err := p.progress.AddXP(amount)
	if err != nil {
		return p.progress, false, err
	}
	p.progress = next

	p.logger.InfoContext(ctx, "xp awarded",
		"source", source,
		"amount", amount,
		"xp", next.XP,
		"level", next.Level,
		"levelled_up", levelled)

	if p.emitter != nil {
		event := events.NewProgressEvent(p.learnerID, source, amount, next, levelled)
		if err := p.emitter.EmitEvent(ctx, event); err != nil {
			p.logger.ErrorContext(ctx, "failed to emit progress event", "error", err)
		}
	}
	return next, levelled, nil
}
