// Package main implements the entry point for the ChemLab API server, which
// serves the learner workspace: progression, the AI tutor, the molecule
// viewer, the virtual lab and the theory quiz.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/chemlab-api/internal/config"
	"github.com/phrazzld/chemlab-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, reset, status, version) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l, *migrateCmd); err != nil {
		l.Error("ChemLab API exited with error", "error", err)
		stop()
		os.Exit(1)
	}
}

// run executes a migration command when one is given, otherwise it serves
// HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, l *slog.Logger, migrateCmd string) error {
	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database", describeDatabase(cfg.Database.URL),
		"llm_configured", cfg.LLM.Configured())

	if migrateCmd != "" {
		return runMigrations(ctx, cfg, migrateCmd, l)
	}

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
