// Package store defines the persistence contract for learner progress.
// Implementations live under internal/platform (postgres, sqlite); an
// in-memory implementation is provided here for tests and for running
// without a database.
package store
