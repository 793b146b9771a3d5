package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

func newRevocations(t *testing.T) (*RevocationList, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRevocationList(client), mr
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestResolveWithoutCredentialsIsAnonymous(t *testing.T) {
	_, verifier := newTestTokens(t)
	principal, err := NewResolver(verifier).Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.True(t, principal.IsAnonymous())
}

func TestResolveBearerToken(t *testing.T) {
	issuer, verifier := newTestTokens(t)
	token, err := issuer.Issue(rbac.Principal{ID: "u-1", Role: rbac.RoleAdmin})
	require.NoError(t, err)

	principal, err := NewResolver(verifier).Resolve(bearerRequest(token.Raw))
	require.NoError(t, err)
	assert.Equal(t, rbac.Principal{ID: "u-1", Role: rbac.RoleAdmin}, principal)
}

func TestResolveBadCredentialIsUnauthenticated(t *testing.T) {
	_, verifier := newTestTokens(t)
	resolver := NewResolver(verifier)

	_, err := resolver.Resolve(bearerRequest("garbage"))
	assert.Equal(t, shared.KindUnauthenticated, shared.KindOf(err))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	_, err = resolver.Resolve(req)
	assert.Equal(t, shared.KindUnauthenticated, shared.KindOf(err))
}

func TestResolveVerifierFailureIsUpstream(t *testing.T) {
	slow := verifierFunc(func(ctx context.Context, _ string) (Claims, error) {
		<-ctx.Done()
		return Claims{}, ctx.Err()
	})
	_, err := NewResolver(slow, WithVerifyTimeout(10*time.Millisecond)).Resolve(bearerRequest("tok"))
	assert.Equal(t, shared.KindUpstream, shared.KindOf(err))

	broken := verifierFunc(func(context.Context, string) (Claims, error) { return Claims{}, errors.New("dial tcp: refused") })
	_, err = NewResolver(broken).Resolve(bearerRequest("tok"))
	assert.Equal(t, shared.KindUpstream, shared.KindOf(err))
}

func TestResolveRejectsRevokedTokens(t *testing.T) {
	issuer, verifier := newTestTokens(t)
	revs, mr := newRevocations(t)
	token, err := issuer.Issue(rbac.Principal{ID: "u-1", Role: rbac.RoleUser})
	require.NoError(t, err)
	resolver := NewResolver(verifier, WithRevocations(revs))

	_, err = resolver.Resolve(bearerRequest(token.Raw))
	require.NoError(t, err)

	require.NoError(t, revs.Revoke(context.Background(), token.Claims.TokenID, token.ExpiresAt))
	assert.True(t, mr.Exists("revoked:"+token.Claims.TokenID))
	_, err = resolver.Resolve(bearerRequest(token.Raw))
	assert.Equal(t, shared.KindUnauthenticated, shared.KindOf(err))

	mr.Close()
	_, err = resolver.Resolve(bearerRequest(token.Raw))
	assert.Equal(t, shared.KindUpstream, shared.KindOf(err))
}

func TestResolveCookieSession(t *testing.T) {
	_, verifier := newTestTokens(t)
	resolver := NewResolver(verifier)

	sess := &shared.Session{ID: "s"}
	sess.Bind("u-5", "Advertiser")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	principal, err := resolver.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, rbac.Principal{ID: "u-5", Role: rbac.RoleAdvertiser}, principal)

	bad := &shared.Session{ID: "s"}
	bad.Bind("u-6", "Janitor")
	req = req.WithContext(shared.ContextWithSession(req.Context(), bad))
	_, err = resolver.Resolve(req)
	assert.Equal(t, shared.KindUnauthenticated, shared.KindOf(err))
}

type roleTable map[string]rbac.Role

func (t roleTable) CurrentRole(_ context.Context, id string) (rbac.Role, error) {
	if id == "broken" {
		return "", errors.New("store down")
	}
	role, ok := t[id]
	if !ok {
		return "", ErrAccountNotFound
	}
	return role, nil
}

func TestResolveCookieSessionUsesCurrentRole(t *testing.T) {
	_, verifier := newTestTokens(t)
	roles := roleTable{"u-5": rbac.RoleAdmin}
	resolver := NewResolver(verifier, WithSessionRoles(roles))

	withSession := func(user, role string) *http.Request {
		sess := &shared.Session{ID: "s"}
		sess.Bind(user, role)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}

	principal, err := resolver.Resolve(withSession("u-5", "Admin"))
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, principal.Role)

	roles["u-5"] = rbac.RoleUser
	principal, err = resolver.Resolve(withSession("u-5", "Admin"))
	require.NoError(t, err)
	assert.Equal(t, rbac.Principal{ID: "u-5", Role: rbac.RoleUser}, principal)

	_, err = resolver.Resolve(withSession("gone", "Admin"))
	assert.Equal(t, shared.KindUnauthenticated, shared.KindOf(err))

	_, err = resolver.Resolve(withSession("broken", "Admin"))
	assert.Equal(t, shared.KindUpstream, shared.KindOf(err))
}

func TestRevokeCoversVerifierLeeway(t *testing.T) {
	revs, mr := newRevocations(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	revs.now = func() time.Time { return now }

	require.NoError(t, revs.Revoke(context.Background(), "fresh", now.Add(time.Minute)))
	assert.Equal(t, time.Minute+ClockLeeway, mr.TTL("revoked:fresh"))

	// Expired but still inside the verifier's leeway.
	require.NoError(t, revs.Revoke(context.Background(), "grace", now.Add(-10*time.Second)))
	assert.Equal(t, ClockLeeway-10*time.Second, mr.TTL("revoked:grace"))
}

func TestRevokeIgnoresExpiredTokens(t *testing.T) {
	revs, mr := newRevocations(t)
	require.NoError(t, revs.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("revoked:old"))
	assert.Error(t, revs.Revoke(context.Background(), "", time.Now().Add(time.Minute)))

	revoked, err := revs.IsRevoked(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)
	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
	_, ok = BearerToken("Token abc")
	assert.False(t, ok)
}
