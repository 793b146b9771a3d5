package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"

	"github.com/bizdir/bizdir/internal/rbac"
)

// ClockLeeway is the clock skew tolerated when checking token expiry.
const ClockLeeway = 30 * time.Second

// MinSecretLength is the shortest accepted HMAC signing secret in bytes.
const MinSecretLength = 32

// ErrWeakSecret is returned when the signing secret is too short.
var ErrWeakSecret = fmt.Errorf("auth: token secret must be at least %d bytes", MinSecretLength)

type tokenClaims struct {
	Subject  string `json:"sub"`
	Role     string `json:"role"`
	ID       string `json:"jti"`
	Issuer   string `json:"iss"`
	IssuedAt int64  `json:"iat"`
	Expiry   int64  `json:"exp"`
}

// Token is a freshly minted access token.
type Token struct {
	Raw       string
	Claims    Claims
	ExpiresAt time.Time
}

// TokenIssuer mints HS256 access tokens.
type TokenIssuer struct {
	signer jose.Signer
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer builds an issuer signing with secret.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: []byte(secret)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: create signer: %w", err)
	}
	return &TokenIssuer{signer: signer, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the principal.
func (i *TokenIssuer) Issue(principal rbac.Principal) (Token, error) {
	if principal.IsAnonymous() {
		return Token{}, errors.New("auth: cannot issue token for anonymous principal")
	}
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.ttl)
	claims := tokenClaims{
		Subject:  principal.ID,
		Role:     string(principal.Role),
		ID:       uuid.NewString(),
		Issuer:   i.issuer,
		IssuedAt: now.Unix(),
		Expiry:   exp.Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return Token{}, err
	}
	object, err := i.signer.Sign(payload)
	if err != nil {
		return Token{}, fmt.Errorf("auth: sign token: %w", err)
	}
	raw, err := object.CompactSerialize()
	if err != nil {
		return Token{}, fmt.Errorf("auth: serialize token: %w", err)
	}
	return Token{
		Raw: raw,
		Claims: Claims{
			Subject:   principal.ID,
			Role:      principal.Role,
			TokenID:   claims.ID,
			Issuer:    i.issuer,
			IssuedAt:  now,
			ExpiresAt: exp,
		},
		ExpiresAt: exp,
	}, nil
}

// TokenVerifier checks tokens minted by TokenIssuer.
type TokenVerifier struct {
	key    []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// NewTokenVerifier builds a verifier for tokens signed with secret.
func NewTokenVerifier(secret, issuer string) (*TokenVerifier, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &TokenVerifier{key: []byte(secret), issuer: issuer, leeway: ClockLeeway, now: time.Now}, nil
}

// Verify implements Verifier.
func (v *TokenVerifier) Verify(ctx context.Context, raw string) (Claims, error) {
	if err := ctx.Err(); err != nil {
		return Claims{}, err
	}
	object, err := jose.ParseSigned(strings.TrimSpace(raw), []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	payload, err := object.Verify(v.key)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	var tc tokenClaims
	if err := json.Unmarshal(payload, &tc); err != nil {
		return Claims{}, fmt.Errorf("%w: malformed claims", ErrInvalidCredential)
	}
	if tc.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}
	if v.issuer != "" && tc.Issuer != v.issuer {
		return Claims{}, fmt.Errorf("%w: unexpected issuer", ErrInvalidCredential)
	}
	exp := time.Unix(tc.Expiry, 0)
	if tc.Expiry == 0 || v.now().After(exp.Add(v.leeway)) {
		return Claims{}, fmt.Errorf("%w: token expired", ErrInvalidCredential)
	}
	role, err := rbac.ParseRole(tc.Role)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return Claims{
		Subject:   tc.Subject,
		Role:      role,
		TokenID:   tc.ID,
		Issuer:    tc.Issuer,
		IssuedAt:  time.Unix(tc.IssuedAt, 0),
		ExpiresAt: exp,
	}, nil
}
