// Package cache decorates the reblog counter with a Redis read-through
// layer. Caching is purely a performance optimization: cache failures fall
// through to the underlying counter and never fail a score computation.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"hivedex/internal/metrics"
	"hivedex/internal/score"
)

// CachedReblogCounter is a score.ReblogCounter with a TTL-bounded Redis
// cache in front.
type CachedReblogCounter struct {
	inner score.ReblogCounter
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedReblogCounter wraps inner with a cache on client.
func NewCachedReblogCounter(inner score.ReblogCounter, client *redis.Client, ttl time.Duration) *CachedReblogCounter {
	return &CachedReblogCounter{inner: inner, rdb: client, ttl: ttl}
}

// CountReblogs implements score.ReblogCounter.
func (c *CachedReblogCounter) CountReblogs(ctx context.Context, postID int64) (int, error) {
	key := "reblogs:" + strconv.FormatInt(postID, 10)
	if v, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if n, err := strconv.Atoi(v); err == nil {
			metrics.ReblogCacheHits.Inc()
			return n, nil
		}
	}
	metrics.ReblogCacheMisses.Inc()

	n, err := c.inner.CountReblogs(ctx, postID)
	if err != nil {
		return 0, err
	}
	_ = c.rdb.Set(ctx, key, strconv.Itoa(n), c.ttl).Err()
	return n, nil
}
