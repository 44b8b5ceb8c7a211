package redis

import (
	"context"
	"time"
)

const denylistPrefix = "auth:revoked:"

var (
	setDenylistValue = Set
	existsDenylist   = Exists
)

// TokenDenylist tracks revoked token ids until their natural expiry.
type TokenDenylist struct{}

func NewTokenDenylist() *TokenDenylist {
	return &TokenDenylist{}
}

// Revoke marks the token id as revoked for ttl. Non-positive ttl is a no-op
// since the token is already expired.
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return setDenylistValue(ctx, denylistPrefix+tokenID, "1", ttl)
}

// IsRevoked reports whether the token id has been revoked.
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	return existsDenylist(ctx, denylistPrefix+tokenID)
}
