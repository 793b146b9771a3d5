package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModerationStatus(t *testing.T) {
	st, err := ParseModerationStatus(" Approved ")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, st)

	_, err = ParseModerationStatus("archived")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, FieldsOf(err), "status")

	_, err = ParseModerationStatus("")
	assert.Error(t, err)
}

func TestModerationFilterDefaultsToApproved(t *testing.T) {
	f, err := ModerationFilter("", false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "approved"}, f)

	f, err = ModerationFilter("pending", true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "pending"}, f)

	_, err = ModerationFilter("bogus", true)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestModerationFilterHidesUnapprovedFromNonStaff(t *testing.T) {
	f, err := ModerationFilter("approved", false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "approved"}, f)

	for _, raw := range []string{"pending", "rejected", " Pending "} {
		_, err := ModerationFilter(raw, false)
		assert.Equal(t, KindForbidden, KindOf(err), raw)
	}
}
