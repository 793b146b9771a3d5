package realestate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bizdir/bizdir/internal/platform/docstore"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

const defaultCurrency = "USD"

// Service manages property listings.
type Service struct {
	properties *docstore.Collection[Property]
	audit      *shared.AuditLogger
	now        func() time.Time
}

// NewService builds Service instance.
func NewService(store docstore.Store, audit *shared.AuditLogger) *Service {
	return &Service{
		properties: docstore.NewCollection[Property](store, "real_estate"),
		audit:      audit,
		now:        time.Now,
	}
}

// Create submits a property for moderation.
func (s *Service) Create(ctx context.Context, actor rbac.Principal, in CreatePropertyInput) (Property, error) {
	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = defaultCurrency
	}
	now := s.now().UTC()
	p := Property{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Kind:        in.Kind,
		Price:       in.Price,
		Currency:    currency,
		Address:     in.Address,
		City:        strings.TrimSpace(in.City),
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		AreaSqm:     in.AreaSqm,
		Status:      shared.StatusPending,
		SubmittedBy: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.properties.Insert(ctx, p.ID, p); err != nil {
		return Property{}, fmt.Errorf("realestate: create: %w", err)
	}
	return p, nil
}

// List returns properties matching filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Property, error) {
	f, err := shared.ModerationFilter(filter.Status, filter.Viewer.IsStaff())
	if err != nil {
		return nil, err
	}
	switch filter.Kind {
	case "":
	case KindSale, KindRent:
		f["kind"] = filter.Kind
	default:
		return nil, shared.ValidationFields("invalid query", map[string]string{"kind": "must be one of sale, rent"})
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		f["city"] = city
	}
	props, err := s.properties.List(ctx, docstore.Query{Filter: f, Limit: filter.Limit, Offset: filter.Offset})
	if err != nil {
		return nil, fmt.Errorf("realestate: list: %w", err)
	}
	return props, nil
}

// UpdateStatus moves a property to a new moderation status.
func (s *Service) UpdateStatus(ctx context.Context, actor rbac.Principal, id string, in StatusInput) (Property, error) {
	status, err := shared.ParseModerationStatus(in.Status)
	if err != nil {
		return Property{}, err
	}
	var previous shared.ModerationStatus
	p, err := s.properties.Update(ctx, id, func(p *Property) error {
		previous = p.Status
		p.Status = status
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return Property{}, shared.StoreError(err, "property", id)
	}
	s.audit.Note(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "property.status_set",
		Entity:   "property",
		EntityID: id,
		Meta:     map[string]any{"from": string(previous), "to": string(status)},
	})
	return p, nil
}
