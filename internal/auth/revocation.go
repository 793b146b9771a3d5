package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList records revoked token ids in Redis until they would have
// expired anyway.
type RevocationList struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRevocationList constructs a RevocationList.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client, prefix: "revoked:", now: time.Now}
}

// Revoke marks tokenID revoked until expiresAt plus ClockLeeway, the last
// moment a verifier still accepts the token. Tokens past that point are
// ignored.
func (l *RevocationList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("auth: token id required")
	}
	ttl := expiresAt.Add(ClockLeeway).Sub(l.now())
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, l.prefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether tokenID was revoked.
func (l *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := l.client.Exists(ctx, l.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
