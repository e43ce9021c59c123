package tests

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// Pin the configuration search path so operator-level configuration
	// files cannot leak into integration runs.
	_ = os.Setenv("ALBATROSS_CONFIG_SEARCH_PATH", ".")
	os.Exit(m.Run())
}
