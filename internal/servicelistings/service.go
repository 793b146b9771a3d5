package servicelistings

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

// Service manages service offerings.
type Service struct {
	offerings *docstore.Collection[Offering]
	audit     *shared.AuditLogger
	now       func() time.Time
}

// NewService builds Service instance.
func NewService(store docstore.Store, audit *shared.AuditLogger) *Service {
	return &Service{
		offerings: docstore.NewCollection[Offering](store, "service_listings"),
		audit:     audit,
		now:       time.Now,
	}
}

// Create submits an offering for moderation.
func (s *Service) Create(ctx context.Context, actor rbac.Principal, in CreateOfferingInput) (Offering, error) {
	now := s.now().UTC()
	o := Offering{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Category:     strings.ToLower(strings.TrimSpace(in.Category)),
		Description:  in.Description,
		PriceFrom:    in.PriceFrom,
		City:         strings.TrimSpace(in.City),
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		Status:       shared.StatusPending,
		SubmittedBy:  actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.offerings.Insert(ctx, o.ID, o); err != nil {
		return Offering{}, fmt.Errorf("servicelistings: create: %w", err)
	}
	return o, nil
}

// List returns offerings with the given status (approved when empty) and
// optional category, newest first. Only staff viewers see unapproved ones.
func (s *Service) List(ctx context.Context, viewer rbac.Principal, status, category string, limit, offset int) ([]Offering, error) {
	f, err := shared.ModerationFilter(status, viewer.IsStaff())
	if err != nil {
		return nil, err
	}
	if c := strings.ToLower(strings.TrimSpace(category)); c != "" {
		f["category"] = c
	}
	offerings, err := s.offerings.List(ctx, docstore.Query{Filter: f, Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("servicelistings: list: %w", err)
	}
	return offerings, nil
}

// UpdateStatus moves an offering to a new moderation status.
func (s *Service) UpdateStatus(ctx context.Context, actor rbac.Principal, id string, in StatusInput) (Offering, error) {
	status, err := shared.ParseModerationStatus(in.Status)
	if err != nil {
		return Offering{}, err
	}
	var previous shared.ModerationStatus
	o, err := s.offerings.Update(ctx, id, func(o *Offering) error {
		previous = o.Status
		o.Status = status
		o.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return Offering{}, shared.StoreError(err, "service listing", id)
	}
	s.audit.Note(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "service.status_set",
		Entity:   "service",
		EntityID: id,
		Meta:     map[string]any{"from": string(previous), "to": string(status)},
	})
	return o, nil
}
