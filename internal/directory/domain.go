package directory

import (
	"time"

	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

// Listing is a business entry in the directory.
type Listing struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Category    string                  `json:"category"`
	Description string                  `json:"description,omitempty"`
	Address     string                  `json:"address,omitempty"`
	City        string                  `json:"city,omitempty"`
	Phone       string                  `json:"phone,omitempty"`
	Email       string                  `json:"email,omitempty"`
	Website     string                  `json:"website,omitempty"`
	Status      shared.ModerationStatus `json:"status"`
	OwnerID     string                  `json:"ownerId,omitempty"`
	CreatedBy   string                  `json:"createdBy"`
	ApprovedBy  string                  `json:"approvedBy,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// CreateListingInput is the payload for adding a listing.
type CreateListingInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Category    string `json:"category" validate:"required,max=80"`
	Description string `json:"description,omitempty" validate:"max=4000"`
	Address     string `json:"address,omitempty" validate:"max=300"`
	City        string `json:"city,omitempty" validate:"max=100"`
	Phone       string `json:"phone,omitempty" validate:"max=40"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
}

// ListFilter narrows listings. An empty Status shows approved listings only;
// other statuses are visible to staff viewers.
type ListFilter struct {
	Viewer   rbac.Principal
	Status   string
	Category string
	City     string
	Limit    int
	Offset   int
}
