package quote

import (
	"context"
	"time"

	"brokerage_system/internal/utils"

	"github.com/redis/go-redis/v9"
)

// Cached decorates an Oracle with a redis read-through cache so hot
// symbols do not hit the provider on every portfolio view.
type Cached struct {
	next Oracle
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCached wraps next with a redis cache using the given TTL.
func NewCached(next Oracle, rdb *redis.Client, ttl time.Duration) *Cached {
	return &Cached{next: next, rdb: rdb, ttl: ttl}
}

// Lookup serves from cache when possible, falling through to the
// wrapped oracle. Lookup failures are never cached.
func (c *Cached) Lookup(ctx context.Context, symbol string) (Quote, error) {
	key := "quote:" + symbol
	var cached Quote
	found, err := utils.GetCache(ctx, c.rdb, key, &cached)
	if err == nil && found {
		return cached, nil
	}
	q, err := c.next.Lookup(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}
	_ = utils.SetCache(ctx, c.rdb, key, q, c.ttl) // best effort
	return q, nil
}
