// Package testing is blank-imported by tests that touch process wiring. It
// switches the app into test mode and supplies throwaway secrets so LoadConfig
// succeeds without a real environment.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

var testEnv = map[string]string{
	"SESSION_SECRET": "test-session-secret",
	"CSRF_SECRET":    "test-csrf-secret",
	"TOKEN_SECRET":   "test-token-secret-0123456789abcdef",
}

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("BIZDIR_TEST_MODE", "1")
		for key, value := range testEnv {
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
