package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

// Revocations reports revoked token ids.
type Revocations interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RoleLookup returns the current role of a user. It returns
// ErrAccountNotFound when the user no longer exists.
type RoleLookup interface {
	CurrentRole(ctx context.Context, userID string) (rbac.Role, error)
}

// Resolver turns the request credential into a principal. A bearer token in
// the Authorization header wins over the cookie session.
type Resolver struct {
	verifier    Verifier
	revocations Revocations
	roles       RoleLookup
	timeout     time.Duration
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithRevocations rejects bearer tokens present in revs.
func WithRevocations(revs Revocations) ResolverOption {
	return func(r *Resolver) { r.revocations = revs }
}

// WithSessionRoles resolves cookie sessions to the stored role of their user
// instead of the role captured at login, so role changes apply to live
// sessions.
func WithSessionRoles(roles RoleLookup) ResolverOption {
	return func(r *Resolver) { r.roles = roles }
}

// WithVerifyTimeout bounds each verification call.
func WithVerifyTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.timeout = d }
}

// NewResolver constructs a Resolver.
func NewResolver(verifier Verifier, opts ...ResolverOption) *Resolver {
	r := &Resolver{verifier: verifier}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve implements dispatch.PrincipalResolver.
func (res *Resolver) Resolve(r *http.Request) (rbac.Principal, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		raw, ok := BearerToken(header)
		if !ok {
			return rbac.Anonymous(), shared.Unauthenticated("malformed authorization header", ErrInvalidCredential)
		}
		claims, err := res.verify(r.Context(), raw)
		if err != nil {
			return rbac.Anonymous(), err
		}
		return claims.Principal(), nil
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return rbac.Anonymous(), nil
	}
	if res.roles != nil {
		return res.sessionPrincipal(r.Context(), sess.User())
	}
	role, err := rbac.ParseRole(sess.Role())
	if err != nil {
		return rbac.Anonymous(), shared.Unauthenticated("invalid session", ErrInvalidCredential)
	}
	return rbac.Principal{ID: sess.User(), Role: role}, nil
}

func (res *Resolver) sessionPrincipal(ctx context.Context, userID string) (rbac.Principal, error) {
	if res.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, res.timeout)
		defer cancel()
	}
	role, err := res.roles.CurrentRole(ctx, userID)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return rbac.Anonymous(), shared.Unauthenticated("invalid session", ErrInvalidCredential)
	case err != nil:
		return rbac.Anonymous(), shared.Upstream("session role lookup failed", err)
	}
	return rbac.Principal{ID: userID, Role: role}, nil
}

// Claims verifies the bearer token of r. It returns ErrInvalidCredential when
// the request carries none.
func (res *Resolver) Claims(r *http.Request) (Claims, error) {
	raw, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return Claims{}, shared.Unauthenticated("bearer token required", ErrInvalidCredential)
	}
	return res.verify(r.Context(), raw)
}

func (res *Resolver) verify(ctx context.Context, raw string) (Claims, error) {
	if res.verifier == nil {
		return Claims{}, shared.Unauthenticated("invalid credential", ErrInvalidCredential)
	}
	if res.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, res.timeout)
		defer cancel()
	}
	claims, err := res.verifier.Verify(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			return Claims{}, shared.Unauthenticated("invalid credential", err)
		}
		return Claims{}, shared.Upstream("credential verification failed", err)
	}
	if res.revocations != nil && claims.TokenID != "" {
		revoked, err := res.revocations.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return Claims{}, shared.Upstream("revocation check failed", err)
		}
		if revoked {
			return Claims{}, shared.Unauthenticated("credential revoked", ErrInvalidCredential)
		}
	}
	return claims, nil
}

// BearerToken extracts the token of an "Authorization: Bearer" header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
