package session

import (
	"context"
	"log/slog"

	"github.com/phrazzld/chemlab-api/internal/task"
)

// submit runs work on d. If d refuses the task, onReject runs inline so the
// session still leaves its loading state.
func submit(
	ctx context.Context,
	d task.Dispatcher,
	logger *slog.Logger,
	typ string,
	work func(ctx context.Context),
	onReject func(),
) {
	t := task.NewFuncTask(typ, func(ctx context.Context) error {
		work(ctx)
		return nil
	})
	if err := d.Submit(ctx, t); err != nil {
		logger.WarnContext(ctx, "task not queued, resolving with fallback",
			"task_type", typ,
			"error", err)
		onReject()
	}
}
