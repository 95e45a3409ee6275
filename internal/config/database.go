package config

import (
	"errors"
	"fmt"
	"strings"
)

// Backend identifies where learner progress is kept.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// ErrUnsupportedDatabaseURL is returned for URLs no progress store can open.
var ErrUnsupportedDatabaseURL = errors.New("unsupported database url")

// ParseDatabaseURL picks the backend for url and returns the DSN its driver
// expects. An empty url selects the in-memory store.
func ParseDatabaseURL(url string) (Backend, string, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return BackendMemory, "", nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return BackendPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlitePath(strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "file:"):
		return sqlitePath(strings.TrimPrefix(url, "file:"))
	default:
		return "", "", fmt.Errorf("%w: scheme must be postgres, sqlite or file", ErrUnsupportedDatabaseURL)
	}
}

func sqlitePath(path string) (Backend, string, error) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "", "", fmt.Errorf("%w: sqlite path is empty", ErrUnsupportedDatabaseURL)
	}
	return BackendSQLite, path, nil
}

// Backend reports which store the configured URL selects.
func (c DatabaseConfig) Backend() (Backend, string, error) {
	return ParseDatabaseURL(c.URL)
}
