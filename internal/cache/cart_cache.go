package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
	"github.com/rahulnakum14/ecommerce-api-go/pkg/metrics"
)

// CartCache is the cart-shaped view over the byte store. The cache is
// advisory: every backend fault is logged and counted here, and callers
// only ever see hit-or-miss. The system stays correct with the backend
// down, just slower.
type CartCache struct {
	store Store
	ttl   time.Duration
	log   zerolog.Logger
	met   *metrics.CacheMetrics
}

func NewCartCache(store Store, ttl time.Duration, log zerolog.Logger, met *metrics.CacheMetrics) *CartCache {
	return &CartCache{store: store, ttl: ttl, log: log, met: met}
}

// Get returns the cached cart for userID, or ok=false on miss. A fault or
// an undecodable entry is treated as a miss.
func (c *CartCache) Get(ctx context.Context, userID string) (*domain.Cart, bool) {
	key := CartKey(userID)

	data, err := c.store.Get(ctx, key)
	if err == ErrCacheMiss {
		c.met.Misses.WithLabelValues("cart").Inc()
		return nil, false
	}
	if err != nil {
		c.fault("cart", "get", err)
		return nil, false
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		c.fault("cart", "decode", err)
		return nil, false
	}

	c.met.Hits.WithLabelValues("cart").Inc()
	return &cart, true
}

// Refresh overwrites the per-cart entry after a successful write. Narrow
// keys are refreshed rather than deleted to spare a guaranteed re-read.
func (c *CartCache) Refresh(ctx context.Context, cart *domain.Cart) {
	data, err := json.Marshal(cart)
	if err != nil {
		c.fault("cart", "encode", err)
		return
	}
	if err := c.store.Set(ctx, CartKey(cart.UserID), data, c.ttl); err != nil {
		c.fault("cart", "set", err)
	}
}

// Invalidate drops the per-cart entry and the aggregate cart listing.
// Called synchronously before a mutation is acknowledged.
func (c *CartCache) Invalidate(ctx context.Context, userID string) {
	if err := c.store.Delete(ctx, CartKey(userID), KeyAllCarts); err != nil {
		c.fault("cart", "delete", err)
	}
}

func (c *CartCache) fault(key, op string, err error) {
	c.met.Faults.WithLabelValues(key, op).Inc()
	c.log.Warn().Err(err).Str("key", key).Str("op", op).Msg("cache fault, continuing without cache")
}
