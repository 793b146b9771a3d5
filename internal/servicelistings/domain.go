package servicelistings

import (
	"time"

	"github.com/bizdir/bizdir/internal/shared"
)

// Offering is a service advertised by a business or freelancer.
type Offering struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	Category     string                  `json:"category"`
	Description  string                  `json:"description,omitempty"`
	PriceFrom    float64                 `json:"priceFrom,omitempty"`
	City         string                  `json:"city,omitempty"`
	ContactEmail string                  `json:"contactEmail"`
	ContactPhone string                  `json:"contactPhone,omitempty"`
	Status       shared.ModerationStatus `json:"status"`
	SubmittedBy  string                  `json:"submittedBy"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// CreateOfferingInput is the payload for submitting a service.
type CreateOfferingInput struct {
	Title        string  `json:"title" validate:"required,max=200"`
	Category     string  `json:"category" validate:"required,max=80"`
	Description  string  `json:"description,omitempty" validate:"max=4000"`
	PriceFrom    float64 `json:"priceFrom,omitempty" validate:"gte=0"`
	City         string  `json:"city,omitempty" validate:"max=100"`
	ContactEmail string  `json:"contactEmail" validate:"required,email"`
	ContactPhone string  `json:"contactPhone,omitempty" validate:"max=40"`
}

// StatusInput moves an offering through moderation.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}
