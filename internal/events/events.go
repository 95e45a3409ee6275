package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/domain"
)

// ProgressEvent records one XP award and the learner's progress after it.
type ProgressEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	LearnerID  uuid.UUID           `json:"learner_id"`
	Source     domain.XPSource     `json:"source"`
	Amount     int                 `json:"amount"`
	Progress   domain.UserProgress `json:"progress"`
	LevelledUp bool                `json:"levelled_up"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewProgressEvent creates a ProgressEvent stamped with a fresh ID and the current time.
func NewProgressEvent(
	learnerID uuid.UUID,
	source domain.XPSource,
	amount int,
	progress domain.UserProgress,
	levelledUp bool,
) *ProgressEvent {
	return &ProgressEvent{
		ID:         uuid.New(),
		LearnerID:  learnerID,
		Source:     source,
		Amount:     amount,
		Progress:   progress,
		LevelledUp: levelledUp,
		CreatedAt:  time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ProgressEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the progression store to publish awards without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ProgressEvent) error
}

// EventHandlerFunc adapts a function into an EventHandler.
type EventHandlerFunc func(ctx context.Context, event *ProgressEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *ProgressEvent) error {
	return f(ctx, event)
}
