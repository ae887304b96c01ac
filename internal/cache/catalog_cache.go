package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
	"github.com/rahulnakum14/ecommerce-api-go/pkg/metrics"
)

// CatalogCache holds the product listing under a single aggregate key.
// Same advisory semantics as CartCache.
type CatalogCache struct {
	store Store
	ttl   time.Duration
	log   zerolog.Logger
	met   *metrics.CacheMetrics
}

func NewCatalogCache(store Store, ttl time.Duration, log zerolog.Logger, met *metrics.CacheMetrics) *CatalogCache {
	return &CatalogCache{store: store, ttl: ttl, log: log, met: met}
}

func (c *CatalogCache) GetAll(ctx context.Context) ([]domain.Product, bool) {
	data, err := c.store.Get(ctx, KeyAllProducts)
	if err == ErrCacheMiss {
		c.met.Misses.WithLabelValues("products").Inc()
		return nil, false
	}
	if err != nil {
		c.fault("get", err)
		return nil, false
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		c.fault("decode", err)
		return nil, false
	}

	c.met.Hits.WithLabelValues("products").Inc()
	return products, true
}

func (c *CatalogCache) SetAll(ctx context.Context, products []domain.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		c.fault("encode", err)
		return
	}
	if err := c.store.Set(ctx, KeyAllProducts, data, c.ttl); err != nil {
		c.fault("set", err)
	}
}

// Invalidate drops the listing; the catalog calls this on any product
// mutation before acknowledging it.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.store.Delete(ctx, KeyAllProducts); err != nil {
		c.fault("delete", err)
	}
}

func (c *CatalogCache) fault(op string, err error) {
	c.met.Faults.WithLabelValues("products", op).Inc()
	c.log.Warn().Err(err).Str("key", "products").Str("op", op).Msg("cache fault, continuing without cache")
}
