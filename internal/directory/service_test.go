package directory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/bizdir/internal/platform/cache"
	"github.com/bizdir/bizdir/internal/platform/docstore"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
	"github.com/bizdir/bizdir/jobs"
)

var (
	admin      = rbac.Principal{ID: "admin-1", Role: rbac.RoleAdmin}
	advertiser = rbac.Principal{ID: "adv-1", Role: rbac.RoleAdvertiser}
)

type recordingNotifier struct {
	mu       sync.Mutex
	approved []jobs.ListingApprovedPayload
}

func (r *recordingNotifier) ListingApproved(_ context.Context, p jobs.ListingApprovedPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approved = append(r.approved, p)
}

func newTestService(t *testing.T) (*Service, *recordingNotifier, *shared.AuditLogger) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := docstore.NewMemory()
	notifier := &recordingNotifier{}
	audit := shared.NewAuditLogger(store, nil)
	svc := NewService(store, Deps{
		Cache:    cache.NewVersioned(client, "directory", time.Minute),
		Notifier: notifier,
		Audit:    audit,
	})
	return svc, notifier, audit
}

func TestPublicListShowsApprovedOnly(t *testing.T) {
	svc, notifier, audit := newTestService(t)
	ctx := context.Background()

	cafe, err := svc.Create(ctx, admin, CreateListingInput{Name: "Cafe", Category: "Food", City: "Accra"})
	require.NoError(t, err)
	assert.Equal(t, shared.StatusPending, cafe.Status)
	_, err = svc.Create(ctx, admin, CreateListingInput{Name: "Garage", Category: "auto"})
	require.NoError(t, err)

	public, err := svc.List(ctx, ListFilter{Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, public)

	_, err = svc.Approve(ctx, admin, cafe.ID)
	require.NoError(t, err)

	public, err = svc.List(ctx, ListFilter{Limit: 20})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Cafe", public[0].Name)

	food, err := svc.List(ctx, ListFilter{Category: "FOOD", Limit: 20})
	require.NoError(t, err)
	assert.Len(t, food, 1)

	pending, err := svc.List(ctx, ListFilter{Viewer: admin, Status: "pending", Limit: 20})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Garage", pending[0].Name)

	_, err = svc.List(ctx, ListFilter{Viewer: admin, Status: "sideways"})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	require.Len(t, notifier.approved, 1)
	assert.Equal(t, cafe.ID, notifier.approved[0].ListingID)
	entries, err := audit.Entries(ctx, "listing", cafe.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestApproveTwiceConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	listing, err := svc.Create(ctx, admin, CreateListingInput{Name: "Shop", Category: "retail"})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, admin, listing.ID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, admin, listing.ID)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))

	_, err = svc.Approve(ctx, admin, "missing")
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestLinkOwnership(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	listing, err := svc.Create(ctx, admin, CreateListingInput{Name: "Salon", Category: "beauty"})
	require.NoError(t, err)

	linked, err := svc.Link(ctx, advertiser, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, advertiser.ID, linked.OwnerID)

	_, err = svc.Link(ctx, advertiser, listing.ID)
	assert.NoError(t, err)

	_, err = svc.Link(ctx, rbac.Principal{ID: "adv-2", Role: rbac.RoleAdvertiser}, listing.ID)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))
}

func TestDeleteInvalidatesCache(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	listing, err := svc.Create(ctx, admin, CreateListingInput{Name: "Bakery", Category: "food"})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, admin, listing.ID)
	require.NoError(t, err)

	before, err := svc.List(ctx, ListFilter{Limit: 20})
	require.NoError(t, err)
	require.Len(t, before, 1)

	require.NoError(t, svc.Delete(ctx, admin, listing.ID))
	after, err := svc.List(ctx, ListFilter{Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, after)

	assert.Equal(t, shared.KindNotFound, shared.KindOf(svc.Delete(ctx, admin, listing.ID)))
	_, err = svc.Get(ctx, admin, listing.ID)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestListWithoutCache(t *testing.T) {
	svc := NewService(docstore.NewMemory(), Deps{})
	listings, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestConcurrentLinkHasSingleOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	listing, err := svc.Create(ctx, admin, CreateListingInput{Name: "Bakery", Category: "food"})
	require.NoError(t, err)

	const callers = 20
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := rbac.Principal{ID: fmt.Sprintf("adv-%d", i), Role: rbac.RoleAdvertiser}
			_, errs[i] = svc.Link(ctx, actor, listing.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	}
	assert.Equal(t, 1, succeeded)
}

func TestConcurrentApproveNotifiesOnce(t *testing.T) {
	svc, notifier, audit := newTestService(t)
	ctx := context.Background()
	listing, err := svc.Create(ctx, admin, CreateListingInput{Name: "Tailor", Category: "clothing"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Approve(ctx, admin, listing.ID)
		}()
	}
	wg.Wait()

	notifier.mu.Lock()
	assert.Len(t, notifier.approved, 1)
	notifier.mu.Unlock()
	entries, err := audit.Entries(ctx, "listing", listing.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListCacheKeysDoNotCollide(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	listing, err := svc.Create(ctx, admin, CreateListingInput{Name: "Kiosk", Category: "food", City: "x"})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, admin, listing.ID)
	require.NoError(t, err)

	got, err := svc.List(ctx, ListFilter{Category: "food", City: "x", Limit: 20})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = svc.List(ctx, ListFilter{Category: "food:x", Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.List(ctx, ListFilter{Category: " Food ", City: " x ", Limit: 20})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestUnapprovedListingsHiddenFromPublic(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	listing, err := svc.Create(ctx, admin, CreateListingInput{Name: "Studio", Category: "art"})
	require.NoError(t, err)

	_, err = svc.List(ctx, ListFilter{Viewer: rbac.Anonymous(), Status: "pending"})
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))
	_, err = svc.List(ctx, ListFilter{Viewer: advertiser, Status: "rejected"})
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))

	_, err = svc.Get(ctx, rbac.Anonymous(), listing.ID)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
	_, err = svc.Get(ctx, advertiser, listing.ID)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))

	_, err = svc.Link(ctx, advertiser, listing.ID)
	require.NoError(t, err)
	got, err := svc.Get(ctx, advertiser, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, got.ID)

	_, err = svc.Approve(ctx, admin, listing.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, rbac.Anonymous(), listing.ID)
	assert.NoError(t, err)
}
