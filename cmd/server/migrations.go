package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/chemlab-api/internal/config"
	"github.com/phrazzld/chemlab-api/internal/platform/migrate"
)

var errNoDatabase = errors.New("migrations require a postgres or sqlite database url")

// runMigrations executes a goose command against the configured database.
func runMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	db, b, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	dialect, ok := dialectFor(b)
	if !ok {
		return errNoDatabase
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", "error", err)
		}
	}()

	logger.Info("Executing migrations", "command", command, "backend", b)
	if err := migrate.Run(ctx, db, dialect, command, logger); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
