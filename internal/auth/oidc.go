package auth

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/bizdir/bizdir/internal/rbac"
)

// DefaultRoleClaim is the ID token claim read when none is configured.
const DefaultRoleClaim = "role"

// OIDCVerifier accepts ID tokens from an external identity provider.
type OIDCVerifier struct {
	verifier  *oidc.IDTokenVerifier
	roleClaim string
}

// NewOIDCVerifier discovers the provider at issuerURL.
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID, roleClaim string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("auth: discover oidc provider: %w", err)
	}
	return NewOIDCVerifierFrom(provider.Verifier(&oidc.Config{ClientID: clientID}), roleClaim), nil
}

// NewOIDCVerifierFrom wraps an already configured go-oidc verifier.
func NewOIDCVerifierFrom(verifier *oidc.IDTokenVerifier, roleClaim string) *OIDCVerifier {
	if roleClaim == "" {
		roleClaim = DefaultRoleClaim
	}
	return &OIDCVerifier{verifier: verifier, roleClaim: roleClaim}
}

// Verify implements Verifier.
func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (Claims, error) {
	token, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Claims{}, ctxErr
		}
		var netErr net.Error
		if errors.As(err, &netErr) {
			return Claims{}, fmt.Errorf("auth: oidc key fetch: %w", err)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	var extra map[string]any
	if err := token.Claims(&extra); err != nil {
		return Claims{}, fmt.Errorf("%w: malformed claims", ErrInvalidCredential)
	}
	name, _ := extra[v.roleClaim].(string)
	role, err := rbac.ParseRole(name)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	jti, _ := extra["jti"].(string)
	return Claims{
		Subject:   token.Subject,
		Role:      role,
		TokenID:   jti,
		Issuer:    token.Issuer,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.Expiry,
	}, nil
}
