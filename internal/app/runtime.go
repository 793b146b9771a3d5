package app

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"
)

// TestModeEnv names the variable that turns the cmd entrypoints into no-ops
// and silences the request logger.
const TestModeEnv = "BIZDIR_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeOnce sync.Once
)

// InTestMode reports whether TestModeEnv holds a true value. The variable is
// read once; call RefreshTestMode after changing it.
func InTestMode() bool {
	testModeOnce.Do(RefreshTestMode)
	return testMode.Load()
}

// RefreshTestMode re-reads TestModeEnv.
func RefreshTestMode() {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	testMode.Store(err == nil && on)
}
