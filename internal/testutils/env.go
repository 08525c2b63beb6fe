package testutils

import (
	"os"
	"testing"
)

// DatabaseURLEnv names the variable that points integration tests at PostgreSQL.
const DatabaseURLEnv = "QUEST_TEST_DATABASE_URL"

// IsIntegrationTestEnvironment returns true if the environment is configured
// for running integration tests with a database connection.
func IsIntegrationTestEnvironment() bool {
	return os.Getenv(DatabaseURLEnv) != ""
}

// ShouldSkipDatabaseTest reports whether database-backed tests should be skipped.
func ShouldSkipDatabaseTest() bool {
	return !IsIntegrationTestEnvironment()
}

// GetTestDatabaseURL returns the database URL for integration tests, skipping
// the test when none is configured.
func GetTestDatabaseURL(t *testing.T) string {
	t.Helper()
	dbURL := os.Getenv(DatabaseURLEnv)
	if dbURL == "" {
		t.Skipf("%s not set, skipping database test", DatabaseURLEnv)
	}
	return dbURL
}
