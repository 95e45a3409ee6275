package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/chemlab-api/internal/config"
	"github.com/phrazzld/chemlab-api/internal/platform/migrate"
	"github.com/phrazzld/chemlab-api/internal/platform/postgres"
	"github.com/phrazzld/chemlab-api/internal/platform/sqlite"
	"github.com/phrazzld/chemlab-api/internal/store"
)

// dialectFor maps a SQL backend to its goose dialect.
func dialectFor(b config.Backend) (migrate.Dialect, bool) {
	switch b {
	case config.BackendPostgres:
		return migrate.DialectPostgres, true
	case config.BackendSQLite:
		return migrate.DialectSQLite, true
	default:
		return "", false
	}
}

// describeDatabase names the backend without exposing credentials.
func describeDatabase(url string) string {
	b, _, err := config.ParseDatabaseURL(url)
	if err != nil {
		return "invalid"
	}
	return string(b)
}

// openDatabase connects to the SQL backend selected by url.
func openDatabase(ctx context.Context, url string) (*sql.DB, config.Backend, error) {
	b, dsn, err := config.ParseDatabaseURL(url)
	if err != nil {
		return nil, "", err
	}

	var db *sql.DB
	switch b {
	case config.BackendPostgres:
		db, err = postgres.Open(ctx, dsn)
	case config.BackendSQLite:
		db, err = sqlite.Open(ctx, dsn)
	default:
		return nil, b, nil
	}
	if err != nil {
		return nil, "", err
	}
	return db, b, nil
}

// setupProgressStore opens the configured backend, applies pending
// migrations, and returns the store. db is nil for the in-memory store.
func setupProgressStore(ctx context.Context, url string, logger *slog.Logger) (store.ProgressStore, *sql.DB, error) {
	db, b, err := openDatabase(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		logger.Warn("No database configured, learner progress is kept in memory only")
		return store.NewMemoryProgressStore(), nil, nil
	}

	dialect, _ := dialectFor(b)
	if err := migrate.Up(ctx, db, dialect, logger); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	var ps store.ProgressStore
	switch b {
	case config.BackendPostgres:
		ps, err = postgres.NewPostgresProgressStore(db, logger)
	default:
		ps, err = sqlite.NewSQLiteProgressStore(db, logger)
	}
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	logger.Info("Database connection established", "backend", b)
	return ps, db, nil
}
