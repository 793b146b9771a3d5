package realestate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/bizdir/internal/platform/docstore"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

func TestPropertyModeration(t *testing.T) {
	store := docstore.NewMemory()
	audit := shared.NewAuditLogger(store, nil)
	svc := NewService(store, audit)
	ctx := context.Background()
	owner := rbac.Principal{ID: "u-1", Role: rbac.RoleUser}
	admin := rbac.Principal{ID: "a-1", Role: rbac.RoleAdmin}

	flat, err := svc.Create(ctx, owner, CreatePropertyInput{Title: "2BR flat", Kind: KindRent, Price: 900, City: "Nairobi", Bedrooms: 2})
	require.NoError(t, err)
	assert.Equal(t, shared.StatusPending, flat.Status)
	assert.Equal(t, "USD", flat.Currency)
	_, err = svc.Create(ctx, owner, CreatePropertyInput{Title: "Plot", Kind: KindSale, Price: 50000, City: "Mombasa", Currency: "kes"})
	require.NoError(t, err)

	public, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, public)

	_, err = svc.UpdateStatus(ctx, admin, flat.ID, StatusInput{Status: "approved"})
	require.NoError(t, err)

	public, err = svc.List(ctx, ListFilter{Kind: KindRent})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, flat.ID, public[0].ID)

	_, err = svc.List(ctx, ListFilter{Kind: "lease"})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	_, err = svc.UpdateStatus(ctx, admin, flat.ID, StatusInput{Status: "sold"})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	_, err = svc.UpdateStatus(ctx, admin, "missing", StatusInput{Status: "rejected"})
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))

	entries, err := audit.Entries(ctx, "property", flat.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
