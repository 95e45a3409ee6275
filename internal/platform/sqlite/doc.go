// Package sqlite provides the SQLite implementation of store.ProgressStore
// using the pure-Go modernc.org/sqlite driver.
package sqlite
