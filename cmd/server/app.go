package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/chemlab-api/internal/catalog"
	"github.com/phrazzld/chemlab-api/internal/config"
	"github.com/phrazzld/chemlab-api/internal/events"
	"github.com/phrazzld/chemlab-api/internal/generation"
	"github.com/phrazzld/chemlab-api/internal/metrics"
	"github.com/phrazzld/chemlab-api/internal/platform/capture"
	"github.com/phrazzld/chemlab-api/internal/platform/gemini"
	"github.com/phrazzld/chemlab-api/internal/service"
	"github.com/phrazzld/chemlab-api/internal/service/auth"
	"github.com/phrazzld/chemlab-api/internal/session"
	"github.com/phrazzld/chemlab-api/internal/store"
	"github.com/phrazzld/chemlab-api/internal/task"
)

// application holds the shared dependencies so they can be cleaned up
// together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	catalog       *catalog.Catalog
	metrics       *metrics.Metrics
	progressStore store.ProgressStore

	jwtService     auth.JWTService
	learnerService *service.LearnerServiceImpl

	taskRunner *task.TaskRunner
}

// newApplication builds every dependency from cfg. On error, anything
// already started is shut down again.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *application, err error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}
	defer func() {
		if err != nil {
			app.cleanup()
		}
	}()

	app.catalog, err = catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	assistant, err := setupAssistant(ctx, cfg.LLM, logger, app.metrics)
	if err != nil {
		return nil, err
	}

	app.taskRunner, err = setupTaskRunner(cfg, logger)
	if err != nil {
		return nil, err
	}

	app.progressStore, app.db, err = setupProgressStore(ctx, cfg.Database.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up progress store: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	progressHandler, err := events.NewProgressHandler(app.progressStore, app.metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress handler: %w", err)
	}
	emitter.RegisterHandler(progressHandler)

	deps := session.Deps{
		Catalog:        app.catalog,
		Assistant:      assistant,
		Dispatcher:     app.taskRunner,
		Device:         capture.NewVirtualDevice(cfg.Camera, logger),
		CameraObserver: app.metrics,
		ReactionDelay:  cfg.Lab.ReactionDelay(),
		Logger:         logger,
	}
	app.learnerService, err = service.NewLearnerService(app.progressStore, emitter, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create learner service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupAssistant wraps the Gemini generator, or the unconfigured generator
// when no key is set, with fallback texts and outcome metrics.
func setupAssistant(
	ctx context.Context,
	cfg config.LLMConfig,
	logger *slog.Logger,
	recorder generation.Recorder,
) (generation.Assistant, error) {
	var gen generation.Generator = generation.Unconfigured{}
	if cfg.Configured() {
		g, err := gemini.NewGenerator(ctx, logger.With("component", "llm_generator"), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
		}
		gen = g
		logger.Info("LLM generator initialized", "model", cfg.ModelName)
	} else {
		logger.Warn("No Gemini API key configured, the tutor will answer with fallback text")
	}

	assistant, err := generation.NewFallback(gen, logger, recorder)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant: %w", err)
	}
	return assistant, nil
}

// setupTaskRunner creates and starts the worker pool that runs external calls.
func setupTaskRunner(cfg *config.Config, logger *slog.Logger) (*task.TaskRunner, error) {
	runner, err := task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
		TaskTimeout: cfg.Task.Timeout(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task runner: %w", err)
	}
	if err := runner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}
	return runner, nil
}

// Run serves HTTP until ctx is cancelled, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	app.startEviction(ctx)
	return app.startHTTPServer(ctx, app.setupRouter())
}

// startEviction sweeps idle workspaces in the background until ctx ends.
// It reports whether a sweep was started.
func (app *application) startEviction(ctx context.Context) bool {
	idle := app.config.Workspace.IdleTimeout()
	interval := app.config.Workspace.SweepInterval()
	if idle <= 0 || interval <= 0 {
		app.logger.Info("Idle workspace eviction disabled")
		return false
	}
	go app.learnerService.RunEviction(ctx, interval, idle)
	app.logger.Info("Idle workspace eviction started",
		"idle_timeout", idle,
		"sweep_interval", interval)
	return true
}

// cleanup releases application resources. Sessions are unmounted before
// the workers stop so no new task is queued during shutdown.
func (app *application) cleanup() {
	if app.learnerService != nil {
		app.learnerService.Close()
	}
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
