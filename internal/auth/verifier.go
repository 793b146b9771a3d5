// Package auth resolves request credentials into principals and runs the login
// flow.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/bizdir/bizdir/internal/rbac"
)

// ErrInvalidCredential marks a credential that was presented but could not be
// verified. Any other verifier error is treated as an upstream failure.
var ErrInvalidCredential = errors.New("auth: invalid credential")

// Claims are the verified facts carried by a credential.
type Claims struct {
	Subject   string
	Role      rbac.Role
	TokenID   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal converts verified claims into a principal.
func (c Claims) Principal() rbac.Principal {
	return rbac.Principal{ID: c.Subject, Role: c.Role}
}

// Verifier checks a raw credential.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Claims, error)
}

// Chain tries each verifier in order until one accepts the credential.
type Chain []Verifier

// Verify implements Verifier. Only ErrInvalidCredential moves on to the next
// verifier; any other failure stops the chain.
func (c Chain) Verify(ctx context.Context, raw string) (Claims, error) {
	lastErr := ErrInvalidCredential
	for _, v := range c {
		if v == nil {
			continue
		}
		claims, err := v.Verify(ctx, raw)
		if err == nil {
			return claims, nil
		}
		if !errors.Is(err, ErrInvalidCredential) {
			return Claims{}, err
		}
		lastErr = err
	}
	return Claims{}, lastErr
}
