package cache

import (
	"context"
	"errors"
	"time"
)

// Store is the raw byte-level cache backend. Get returns ErrCacheMiss
// when the key is absent; every other error is a backend fault.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

var ErrCacheMiss = errors.New("cache miss")

// Well-known keys. Aggregate keys are deleted on mutation (recomputing
// them is expensive, one stale round trip is not); per-cart keys are
// refreshed in place after a successful write.
const (
	KeyAllCarts    = "carts:all"
	KeyAllProducts = "products:all"
)

// CartKey is the per-user cart key.
func CartKey(userID string) string {
	return "cart:" + userID
}
