package realestate

import (
	"time"

	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

// Property kinds.
const (
	KindSale = "sale"
	KindRent = "rent"
)

// Property is a real estate listing.
type Property struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Kind        string                  `json:"kind"`
	Price       float64                 `json:"price"`
	Currency    string                  `json:"currency"`
	Address     string                  `json:"address,omitempty"`
	City        string                  `json:"city"`
	Bedrooms    int                     `json:"bedrooms,omitempty"`
	Bathrooms   int                     `json:"bathrooms,omitempty"`
	AreaSqm     float64                 `json:"areaSqm,omitempty"`
	Status      shared.ModerationStatus `json:"status"`
	SubmittedBy string                  `json:"submittedBy"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// CreatePropertyInput is the payload for submitting a property.
type CreatePropertyInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description,omitempty" validate:"max=8000"`
	Kind        string  `json:"kind" validate:"required,oneof=sale rent"`
	Price       float64 `json:"price" validate:"gte=0"`
	Currency    string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Address     string  `json:"address,omitempty" validate:"max=300"`
	City        string  `json:"city" validate:"required,max=100"`
	Bedrooms    int     `json:"bedrooms,omitempty" validate:"gte=0,lte=100"`
	Bathrooms   int     `json:"bathrooms,omitempty" validate:"gte=0,lte=100"`
	AreaSqm     float64 `json:"areaSqm,omitempty" validate:"gte=0"`
}

// StatusInput moves a property through moderation.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListFilter narrows property listings. An empty Status shows approved
// properties only; other statuses are visible to staff viewers.
type ListFilter struct {
	Viewer rbac.Principal
	Status string
	Kind   string
	City   string
	Limit  int
	Offset int
}
