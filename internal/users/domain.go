package users

import (
	"time"

	"github.com/bizdir/bizdir/internal/rbac"
)

// BusinessProfile describes the company behind an account.
type BusinessProfile struct {
	CompanyName string `json:"companyName" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
	Phone       string `json:"phone,omitempty" validate:"max=40"`
	Address     string `json:"address,omitempty" validate:"max=300"`
	City        string `json:"city,omitempty" validate:"max=100"`
}

// User represents a user account.
type User struct {
	ID              string           `json:"id"`
	Email           string           `json:"email"`
	Name            string           `json:"name"`
	Role            rbac.Role        `json:"role"`
	BusinessProfile *BusinessProfile `json:"businessProfile,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Account is the stored form of a user, including credentials.
type Account struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// CreateUserInput is the payload for registering a user. New accounts always
// start with the User role.
type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// SetRoleInput is the payload for changing a user's role.
type SetRoleInput struct {
	Role string `json:"role" validate:"required"`
}

// ListFilter narrows user listings.
type ListFilter struct {
	Role   rbac.Role
	Limit  int
	Offset int
}
