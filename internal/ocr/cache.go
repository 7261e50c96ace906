package ocr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brainsait/docuscan/internal/cache"
)

// CacheTTL bounds how long an extraction result is reusable.
const CacheTTL = 7 * 24 * time.Hour

const cacheKeyPrefix = "ocr:"

// CachedResult is the reusable portion of a completed extraction, keyed
// by content fingerprint so identical uploads never hit the model twice.
type CachedResult struct {
	Text       string    `json:"text"`
	Language   string    `json:"language"`
	Confidence float64   `json:"confidence"`
	PageCount  int       `json:"page_count"`
	CachedAt   time.Time `json:"cached_at"`
}

// ResultCache stores extraction results by fingerprint.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (*CachedResult, error)
	Put(ctx context.Context, fingerprint string, res *CachedResult) error
	// Sweep removes entries whose CachedAt is older than the cutoff and
	// returns how many were deleted.
	Sweep(ctx context.Context, olderThan time.Time) (int, error)
}

type RedisResultCache struct {
	cache *cache.Cache
}

func NewRedisResultCache(c *cache.Cache) *RedisResultCache {
	return &RedisResultCache{cache: c}
}

func cacheKey(fingerprint string) string {
	return cacheKeyPrefix + fingerprint
}

func (rc *RedisResultCache) Get(ctx context.Context, fingerprint string) (*CachedResult, error) {
	var res CachedResult
	if err := rc.cache.Get(ctx, cacheKey(fingerprint), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (rc *RedisResultCache) Put(ctx context.Context, fingerprint string, res *CachedResult) error {
	return rc.cache.Set(ctx, cacheKey(fingerprint), res, CacheTTL)
}

// Sweep scans the result keyspace and deletes stale entries. Redis TTLs
// already expire entries on their own; the sweep keeps the cutoff
// enforceable independently of per-key TTL drift.
func (rc *RedisResultCache) Sweep(ctx context.Context, olderThan time.Time) (int, error) {
	keys, err := rc.cache.Keys(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("list cache keys: %w", err)
	}

	removed := 0
	for _, key := range keys {
		var res CachedResult
		err := rc.cache.Get(ctx, key, &res)
		if errors.Is(err, cache.ErrMiss) {
			continue
		}
		if err != nil {
			return removed, err
		}
		if res.CachedAt.Before(olderThan) {
			if err := rc.cache.Delete(ctx, key); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
