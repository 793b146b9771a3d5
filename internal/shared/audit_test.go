package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/bizdir/internal/platform/docstore"
)

func TestAuditRecordAndEntries(t *testing.T) {
	ctx := context.Background()
	audit := NewAuditLogger(docstore.NewMemory(), nil)

	require.NoError(t, audit.Record(ctx, AuditLog{ActorID: "sa", Action: "user.role_set", Entity: "user", EntityID: "u-1", Meta: map[string]any{"role": "Admin"}}))
	audit.Note(ctx, AuditLog{ActorID: "sa", Action: "user.role_set", Entity: "user", EntityID: "u-2"})

	entries, err := audit.Entries(ctx, "user", "u-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sa", entries[0].ActorID)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].At.IsZero())
}

func TestAuditRequiresFields(t *testing.T) {
	audit := NewAuditLogger(docstore.NewMemory(), nil)
	assert.Error(t, audit.Record(context.Background(), AuditLog{Action: "x"}))

	var nilLogger *AuditLogger
	assert.Error(t, nilLogger.Record(context.Background(), AuditLog{}))
	nilLogger.Note(context.Background(), AuditLog{})
}
