package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bizdir/bizdir/internal/platform/docstore"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Create(ctx context.Context, acc Account) error
	Get(ctx context.Context, id string) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	Update(ctx context.Context, id string, mutate func(*Account) error) (Account, error)
	List(ctx context.Context, filter ListFilter) ([]Account, error)
}

// Service handles user business logic.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
	cost  int
	now   func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit, cost: bcrypt.DefaultCost, now: time.Now}
}

// Create registers a new account with the User role.
func (s *Service) Create(ctx context.Context, in CreateUserInput) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	now := s.now().UTC()
	acc := Account{
		User: User{
			ID:        uuid.NewString(),
			Email:     NormalizeEmail(in.Email),
			Name:      strings.TrimSpace(in.Name),
			Role:      rbac.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return User{}, shared.Conflict("email already registered")
		}
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	return acc.User, nil
}

// List returns users, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]User, error) {
	accounts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	out := make([]User, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, acc.User)
	}
	return out, nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	acc, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, shared.StoreError(err, "user", id)
	}
	return acc.User, nil
}

// UpdateBusinessProfile replaces the business profile of user id. Callers may
// update their own profile; staff may update any.
func (s *Service) UpdateBusinessProfile(ctx context.Context, actor rbac.Principal, id string, profile BusinessProfile) (User, error) {
	if actor.ID != id && !actor.IsStaff() {
		return User{}, shared.Forbidden("cannot update another user's business profile")
	}
	acc, err := s.repo.Update(ctx, id, func(acc *Account) error {
		acc.BusinessProfile = &profile
		acc.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return User{}, shared.StoreError(err, "user", id)
	}
	return acc.User, nil
}

// SetRole changes the role of user id and records the change.
func (s *Service) SetRole(ctx context.Context, actor rbac.Principal, id string, in SetRoleInput) (User, error) {
	role, err := rbac.ParseRole(in.Role)
	if err != nil {
		return User{}, shared.ValidationFields("invalid role", map[string]string{
			"role": "must be one of User, Advertiser, Admin, SAdmin",
		})
	}
	var previous rbac.Role
	acc, err := s.repo.Update(ctx, id, func(acc *Account) error {
		previous = acc.Role
		acc.Role = role
		acc.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return User{}, shared.StoreError(err, "user", id)
	}
	s.audit.Note(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "user.role_set",
		Entity:   "user",
		EntityID: id,
		Meta:     map[string]any{"from": string(previous), "to": string(role)},
	})
	return acc.User, nil
}

// FindAccount returns the stored account for email. It returns
// docstore.ErrNotFound when none exists.
func (s *Service) FindAccount(ctx context.Context, email string) (Account, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return Account{}, fmt.Errorf("users: find by email: %w", err)
	}
	return acc, err
}
