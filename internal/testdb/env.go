package testdb

import (
	"log/slog"
	"os"
	"strings"
)

// EnvTestDatabaseURL names the variable holding the PostgreSQL test database URL.
const EnvTestDatabaseURL = "CHEMLAB_TEST_DATABASE_URL"

// ciEnvVars are set by common CI providers.
var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// IsCI reports whether the tests run under a CI provider.
func IsCI() bool {
	for _, name := range ciEnvVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// GetTestDatabaseURL returns the PostgreSQL test database URL, or "" when
// none is configured.
func GetTestDatabaseURL() string {
	url := strings.TrimSpace(os.Getenv(EnvTestDatabaseURL))
	if url == "" && IsCI() {
		slog.Default().Error("no test database URL found in CI environment",
			slog.String("variable", EnvTestDatabaseURL),
			slog.String("impact", "PostgreSQL tests will be skipped"))
	}
	return url
}

// ShouldSkipDatabaseTest reports whether PostgreSQL tests must be skipped.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}
