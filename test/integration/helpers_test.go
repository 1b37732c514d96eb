package integration

import (
	"os"
	"testing"
)

// requireEnv skips the test unless the named infrastructure variable is set.
func requireEnv(t *testing.T, key string) string {
	t.Helper()
	v := os.Getenv(key)
	if v == "" {
		t.Skipf("%s not set, skipping integration test", key)
	}
	return v
}
