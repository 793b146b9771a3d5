package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/bizdir/internal/rbac"
)

const testIssuer = "https://id.example.test"

func newOIDCFixture(t *testing.T) (*rsa.PrivateKey, *OIDCVerifier) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: "bizdir"})
	return key, NewOIDCVerifierFrom(verifier, "bizdir_role")
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims map[string]any) string {
	t.Helper()
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, nil)
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	object, err := signer.Sign(payload)
	require.NoError(t, err)
	raw, err := object.CompactSerialize()
	require.NoError(t, err)
	return raw
}

func idClaims(role string, exp time.Time) map[string]any {
	return map[string]any{
		"iss":         testIssuer,
		"aud":         "bizdir",
		"sub":         "ext-7",
		"iat":         time.Now().Unix(),
		"exp":         exp.Unix(),
		"jti":         "id-1",
		"bizdir_role": role,
	}
}

func TestOIDCVerifierAcceptsProviderTokens(t *testing.T) {
	key, verifier := newOIDCFixture(t)
	raw := signIDToken(t, key, idClaims("admin", time.Now().Add(time.Hour)))

	claims, err := verifier.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "ext-7", claims.Subject)
	assert.Equal(t, rbac.RoleAdmin, claims.Role)
	assert.Equal(t, "id-1", claims.TokenID)
	assert.Equal(t, testIssuer, claims.Issuer)
}

func TestOIDCVerifierRejectsInvalidTokens(t *testing.T) {
	key, verifier := newOIDCFixture(t)

	_, err := verifier.Verify(context.Background(), signIDToken(t, key, idClaims("admin", time.Now().Add(-time.Hour))))
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = verifier.Verify(context.Background(), signIDToken(t, key, idClaims("janitor", time.Now().Add(time.Hour))))
	assert.ErrorIs(t, err, ErrInvalidCredential)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	_, err = verifier.Verify(context.Background(), signIDToken(t, otherKey, idClaims("admin", time.Now().Add(time.Hour))))
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
