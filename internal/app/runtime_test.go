package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTestMode(t *testing.T) {
	t.Cleanup(RefreshTestMode)

	for value, want := range map[string]bool{"1": true, "true": true, "0": false, "": false, "yes": false} {
		t.Setenv(TestModeEnv, value)
		RefreshTestMode()
		assert.Equal(t, want, InTestMode(), "value %q", value)
	}
}
