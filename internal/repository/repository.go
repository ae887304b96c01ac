package repository

import (
	"context"
	"errors"

	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrVersionConflict means the cart changed between load and persist;
	// the caller re-reads and retries the mutation.
	ErrVersionConflict = errors.New("cart version conflict")
)

// CartRepository is the persistent store for cart aggregates. SaveCart
// inserts a version-1 document when cart.Version is zero and otherwise
// compare-and-swaps on the loaded version.
type CartRepository interface {
	FindByUser(ctx context.Context, userID string) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
}

// ProductRepository is read-only from the cart engine's perspective.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
