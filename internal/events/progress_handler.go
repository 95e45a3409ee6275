package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/domain"
)

// ProgressSaver persists a learner's progress snapshot.
type ProgressSaver interface {
	SaveProgress(ctx context.Context, learnerID uuid.UUID, progress domain.UserProgress) error
}

// ProgressObserver is notified of awards, typically to update metrics.
type ProgressObserver interface {
	XPAwarded(source string, amount int, levelledUp bool)
}

// ProgressHandler persists progress snapshots and reports awards.
type ProgressHandler struct {
	saver       ProgressSaver
	observer    ProgressObserver
	saveTimeout time.Duration
	logger      *slog.Logger
}

var _ EventHandler = (*ProgressHandler)(nil)

// NewProgressHandler creates a ProgressHandler. observer may be nil.
func NewProgressHandler(
	saver ProgressSaver,
	observer ProgressObserver,
	logger *slog.Logger,
) (*ProgressHandler, error) {
	if saver == nil {
		return nil, errors.New("progress saver cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &ProgressHandler{
		saver:       saver,
		observer:    observer,
		saveTimeout: 5 * time.Second,
		logger:      logger.With("component", "progress_handler"),
	}, nil
}

// HandleEvent saves the event's snapshot. The save runs detached from the
// caller's cancellation so an award resolved during shutdown still lands.
func (h *ProgressHandler) HandleEvent(ctx context.Context, event *ProgressEvent) error {
	if h.observer != nil {
		h.observer.XPAwarded(string(event.Source), event.Amount, event.LevelledUp)
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.saveTimeout)
	defer cancel()

	if err := h.saver.SaveProgress(saveCtx, event.LearnerID, event.Progress); err != nil {
		return fmt.Errorf("failed to save progress for learner %s: %w", event.LearnerID, err)
	}

	h.logger.DebugContext(ctx, "progress saved",
		"learner_id", event.LearnerID,
		"xp", event.Progress.XP,
		"level", event.Progress.Level,
		"levelled_up", event.LevelledUp)
	return nil
}
