package users

import (
	"context"
	"errors"
	"strings"

	"github.com/bizdir/bizdir/internal/platform/docstore"
)

// ErrDuplicateEmail is returned when an email is already registered.
var ErrDuplicateEmail = errors.New("users: email already registered")

type emailIndex struct {
	UserID string `json:"userId"`
}

// Repository persists accounts in the document store. Email uniqueness is kept
// by an index collection keyed on the normalised address.
type Repository struct {
	accounts *docstore.Collection[Account]
	emails   *docstore.Collection[emailIndex]
}

// NewRepository constructs a Repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{
		accounts: docstore.NewCollection[Account](store, "users"),
		emails:   docstore.NewCollection[emailIndex](store, "user_emails"),
	}
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a new account.
func (r *Repository) Create(ctx context.Context, acc Account) error {
	key := NormalizeEmail(acc.Email)
	if err := r.emails.Insert(ctx, key, emailIndex{UserID: acc.ID}); err != nil {
		if errors.Is(err, docstore.ErrConflict) {
			return ErrDuplicateEmail
		}
		return err
	}
	if err := r.accounts.Insert(ctx, acc.ID, acc); err != nil {
		_ = r.emails.Delete(ctx, key)
		return err
	}
	return nil
}

// Get loads an account by id.
func (r *Repository) Get(ctx context.Context, id string) (Account, error) {
	return r.accounts.Get(ctx, id)
}

// FindByEmail loads an account by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Account, error) {
	idx, err := r.emails.Get(ctx, NormalizeEmail(email))
	if err != nil {
		return Account{}, err
	}
	return r.accounts.Get(ctx, idx.UserID)
}

// Update applies mutate to account id atomically and returns the result.
func (r *Repository) Update(ctx context.Context, id string, mutate func(*Account) error) (Account, error) {
	return r.accounts.Update(ctx, id, mutate)
}

// List returns accounts matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	q := docstore.Query{Limit: filter.Limit, Offset: filter.Offset}
	if filter.Role != "" {
		q.Filter = map[string]any{"role": string(filter.Role)}
	}
	return r.accounts.List(ctx, q)
}
