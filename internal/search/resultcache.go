package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/apptrove/apptrove/internal/apperr"
	"github.com/apptrove/apptrove/internal/cache"
	"github.com/apptrove/apptrove/internal/dto"
)

// DefaultResultTTL keeps pages warm for half a day. Staleness against index
// mutations is accepted; there is no invalidation besides expiry.
const DefaultResultTTL = 12 * time.Hour

// ResultCache stores computed search pages under canonical keys with a
// sliding TTL: every hit extends the entry's life to the full TTL.
type ResultCache struct {
	store cache.Cache
	ttl   time.Duration
}

// NewResultCache wraps a cache store. A non-positive ttl falls back to
// DefaultResultTTL.
func NewResultCache(store cache.Cache, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &ResultCache{store: store, ttl: ttl}
}

// TTL reports the configured expiry duration.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Get looks up a cached page. A hit refreshes the entry's TTL. A corrupt
// payload counts as a miss, not a failure; a transport failure surfaces as
// an UnavailableError.
func (c *ResultCache) Get(ctx context.Context, key string) (*dto.SearchPage, error) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, nil
		}
		return nil, apperr.NewUnavailable("cache", err)
	}

	var page dto.SearchPage
	if err := json.Unmarshal(raw, &page); err != nil {
		slog.Warn("Discarding corrupt cached search page", "key", key, "error", err)
		return nil, nil
	}

	if err := c.store.Refresh(ctx, key, c.ttl); err != nil {
		return nil, apperr.NewUnavailable("cache", err)
	}
	return &page, nil
}

// Put stores a freshly computed page, replacing any previous entry.
func (c *ResultCache) Put(ctx context.Context, key string, page *dto.SearchPage) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	if err := c.store.Put(ctx, key, raw, c.ttl); err != nil {
		return apperr.NewUnavailable("cache", err)
	}
	return nil
}
