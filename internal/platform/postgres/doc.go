// Package postgres provides the PostgreSQL implementation of store.ProgressStore
// using the pgx database/sql driver.
package postgres
