package directory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bizdir/bizdir/internal/platform/docstore"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
	"github.com/bizdir/bizdir/jobs"
)

// ListCache memoises list results between mutations. *cache.Versioned
// satisfies it.
type ListCache interface {
	FetchJSON(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error
	Bump(ctx context.Context) error
}

// Notifier is told about approved listings.
type Notifier interface {
	ListingApproved(ctx context.Context, payload jobs.ListingApprovedPayload)
}

// Service manages directory listings.
type Service struct {
	listings *docstore.Collection[Listing]
	cache    ListCache
	notifier Notifier
	audit    *shared.AuditLogger
	now      func() time.Time
}

// Deps are the optional collaborators of Service.
type Deps struct {
	Cache    ListCache
	Notifier Notifier
	Audit    *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(store docstore.Store, deps Deps) *Service {
	return &Service{
		listings: docstore.NewCollection[Listing](store, "directory_listings"),
		cache:    deps.Cache,
		notifier: deps.Notifier,
		audit:    deps.Audit,
		now:      time.Now,
	}
}

// Create adds a pending listing.
func (s *Service) Create(ctx context.Context, actor rbac.Principal, in CreateListingInput) (Listing, error) {
	now := s.now().UTC()
	listing := Listing{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Description: in.Description,
		Address:     in.Address,
		City:        strings.TrimSpace(in.City),
		Phone:       in.Phone,
		Email:       in.Email,
		Website:     in.Website,
		Status:      shared.StatusPending,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.listings.Insert(ctx, listing.ID, listing); err != nil {
		return Listing{}, fmt.Errorf("directory: create: %w", err)
	}
	s.invalidate(ctx)
	return listing, nil
}

// List returns listings matching filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Listing, error) {
	query, err := ModerationQuery(filter)
	if err != nil {
		return nil, err
	}
	if s.cache == nil {
		listings, err := s.listings.List(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("directory: list: %w", err)
		}
		return listings, nil
	}

	load := func(ctx context.Context) (any, error) {
		return s.listings.List(ctx, query)
	}
	status, _ := query.Filter["status"].(string)
	category, _ := query.Filter["category"].(string)
	city, _ := query.Filter["city"].(string)
	out := []Listing{}
	err = s.cache.FetchJSON(ctx, &out, load, "list", status, category, city,
		strconv.Itoa(query.Limit), strconv.Itoa(query.Offset))
	if err != nil {
		return nil, fmt.Errorf("directory: list: %w", err)
	}
	return out, nil
}

// ModerationQuery builds the store query for filter.
func ModerationQuery(filter ListFilter) (docstore.Query, error) {
	f, err := shared.ModerationFilter(filter.Status, filter.Viewer.IsStaff())
	if err != nil {
		return docstore.Query{}, err
	}
	if c := strings.ToLower(strings.TrimSpace(filter.Category)); c != "" {
		f["category"] = c
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		f["city"] = city
	}
	return docstore.Query{Filter: f, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Get returns one listing. Listings that are not approved are visible to
// staff and to their owner only.
func (s *Service) Get(ctx context.Context, viewer rbac.Principal, id string) (Listing, error) {
	listing, err := s.listings.Get(ctx, id)
	if err != nil {
		return Listing{}, shared.StoreError(err, "listing", id)
	}
	if listing.Status != shared.StatusApproved && !viewer.IsStaff() &&
		(viewer.IsAnonymous() || viewer.ID != listing.OwnerID) {
		return Listing{}, shared.NotFound("listing", id)
	}
	return listing, nil
}

// Delete removes a listing.
func (s *Service) Delete(ctx context.Context, actor rbac.Principal, id string) error {
	if err := s.listings.Delete(ctx, id); err != nil {
		return shared.StoreError(err, "listing", id)
	}
	s.invalidate(ctx)
	s.audit.Note(ctx, shared.AuditLog{ActorID: actor.ID, Action: "listing.deleted", Entity: "listing", EntityID: id})
	return nil
}

// Approve publishes a listing. Approving an approved listing is a conflict.
func (s *Service) Approve(ctx context.Context, actor rbac.Principal, id string) (Listing, error) {
	var previous shared.ModerationStatus
	listing, err := s.listings.Update(ctx, id, func(l *Listing) error {
		if l.Status == shared.StatusApproved {
			return shared.Conflict("listing is already approved")
		}
		previous = l.Status
		l.Status = shared.StatusApproved
		l.ApprovedBy = actor.ID
		l.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return Listing{}, shared.StoreError(err, "listing", id)
	}
	s.invalidate(ctx)
	s.audit.Note(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "listing.approved",
		Entity:   "listing",
		EntityID: id,
		Meta:     map[string]any{"from": string(previous)},
	})
	if s.notifier != nil {
		s.notifier.ListingApproved(ctx, jobs.ListingApprovedPayload{
			ListingID:  id,
			Name:       listing.Name,
			OwnerID:    listing.OwnerID,
			ApprovedBy: actor.ID,
		})
	}
	return listing, nil
}

// Link makes actor the owner of a listing. Relinking to the same owner is a
// no-op; a listing owned by someone else is a conflict.
func (s *Service) Link(ctx context.Context, actor rbac.Principal, id string) (Listing, error) {
	linked := false
	listing, err := s.listings.Update(ctx, id, func(l *Listing) error {
		switch l.OwnerID {
		case actor.ID:
			return nil
		case "":
		default:
			return shared.Conflict("listing is already linked to another account")
		}
		l.OwnerID = actor.ID
		l.UpdatedAt = s.now().UTC()
		linked = true
		return nil
	})
	if err != nil {
		return Listing{}, shared.StoreError(err, "listing", id)
	}
	if linked {
		s.invalidate(ctx)
	}
	return listing, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx)
}
