package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/brainsait/docuscan/internal/cache"
)

// Denylist records revoked session tokens until their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RedisDenylist keys entries by token digest so raw tokens never land in
// the keyspace.
type RedisDenylist struct {
	cache *cache.Cache
}

func NewRedisDenylist(c *cache.Cache) *RedisDenylist {
	return &RedisDenylist{cache: c}
}

func denylistKey(token string) string {
	h := sha256.Sum256([]byte(token))
	return "denylist:" + hex.EncodeToString(h[:])
}

func (d *RedisDenylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; verification will reject it anyway.
		return nil
	}
	return d.cache.Set(ctx, denylistKey(token), true, ttl)
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	var revoked bool
	err := d.cache.Get(ctx, denylistKey(token), &revoked)
	if errors.Is(err, cache.ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return revoked, nil
}
