// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured
// JSON logging with a configurable level, and carries request-scoped loggers
// through context.Context so session code logs with trace and learner IDs.
package logger
