package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

// ErrAccountNotFound is returned by AccountStore when no account matches.
var ErrAccountNotFound = errors.New("auth: account not found")

// Account is the login view of a user.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         rbac.Role
}

// AccountStore looks up accounts by email.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
}

// Revoker records revoked token ids.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// Session is the outcome of a successful login.
type Session struct {
	Token     string         `json:"token"`
	TokenType string         `json:"tokenType"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      rbac.Principal `json:"user"`
	CSRFToken string         `json:"csrfToken,omitempty"`
}

// Service wraps authentication business rules.
type Service struct {
	accounts AccountStore
	issuer   *TokenIssuer
	revoker  Revoker
}

// NewService constructs a new Service.
func NewService(accounts AccountStore, issuer *TokenIssuer, revoker Revoker) *Service {
	return &Service{accounts: accounts, issuer: issuer, revoker: revoker}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	account, err := s.accounts.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, shared.Unauthenticated("invalid email or password", shared.ErrInvalidCredentials)
		}
		return Account{}, fmt.Errorf("auth: find account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Account{}, shared.Unauthenticated("invalid email or password", shared.ErrInvalidCredentials)
	}
	if !account.Role.Valid() {
		return Account{}, shared.Unauthenticated("account has no valid role", shared.ErrInvalidCredentials)
	}
	return account, nil
}

// Login authenticates the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	account, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	principal := rbac.Principal{ID: account.ID, Role: account.Role}
	token, err := s.issuer.Issue(principal)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token.Raw,
		TokenType: "Bearer",
		ExpiresAt: token.ExpiresAt,
		User:      principal,
	}, nil
}

// Logout revokes the token described by claims.
func (s *Service) Logout(ctx context.Context, claims Claims) error {
	if s.revoker == nil || claims.TokenID == "" {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return shared.Upstream("revoke token", err)
	}
	return nil
}
