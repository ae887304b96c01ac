// Package catalog is the read path over the product collection. Product
// CRUD lives elsewhere; the cart engine only needs lookups and the cached
// listing.
package catalog

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rahulnakum14/ecommerce-api-go/internal/cache"
	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
	"github.com/rahulnakum14/ecommerce-api-go/internal/repository"
)

type Service struct {
	products repository.ProductRepository
	cache    *cache.CatalogCache
	log      zerolog.Logger
	sfg      singleflight.Group
}

func NewService(products repository.ProductRepository, catalogCache *cache.CatalogCache, log zerolog.Logger) *Service {
	return &Service{
		products: products,
		cache:    catalogCache,
		log:      log.With().Str("component", "catalog").Logger(),
	}
}

// ListProducts returns the whole catalog, cache-aside with a stampede
// guard on the miss path.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if cached, ok := s.cache.GetAll(ctx); ok {
		return cached, nil
	}

	v, err, _ := s.sfg.Do(cache.KeyAllProducts, func() (interface{}, error) {
		products, err := s.products.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.SetAll(ctx, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]domain.Product), nil
}

// GetProduct looks a product up by id, mapping the repository sentinel to
// the typed taxonomy.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, domain.NotFoundErr("product", id)
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}
