// Package cart owns every mutation of the cart aggregate and the cache
// coordination around it. Reads go through the cache; writes persist
// first and invalidate synchronously before success is reported.
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"github.com/rahulnakum14/ecommerce-api-go/internal/cache"
	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
	"github.com/rahulnakum14/ecommerce-api-go/internal/pricing"
	"github.com/rahulnakum14/ecommerce-api-go/internal/repository"
)

// maxSaveAttempts bounds the optimistic-concurrency retry loop. Each
// attempt re-reads the cart, so a conflict means another writer won and
// the merge is replayed on its result.
const maxSaveAttempts = 3

const invalidateTimeout = time.Second

type Service struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	cache    *cache.CartCache
	log      zerolog.Logger
	sfg      singleflight.Group // prevents cache stampede on reads
}

func NewService(carts repository.CartRepository, products repository.ProductRepository, cartCache *cache.CartCache, log zerolog.Logger) *Service {
	return &Service{
		carts:    carts,
		products: products,
		cache:    cartCache,
		log:      log.With().Str("component", "cart").Logger(),
	}
}

// GetCart returns the user's cart, reading through the cache. A user with
// no cart gets an empty cart, not an error.
func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if cached, ok := s.cache.Get(ctx, userID); ok {
		return cached, nil
	}

	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.carts.FindByUser(ctx, userID)
		if errors.Is(err, repository.ErrCartNotFound) {
			now := time.Now()
			return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
		}
		if err != nil {
			return nil, err
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
			defer cancel()
			s.cache.Refresh(ctx, cart)
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// LineDetail is a cart line joined with its catalog product for display.
type LineDetail struct {
	Product    domain.Product `json:"product"`
	Quantity   int64          `json:"quantity"`
	PriceCents domain.Cents   `json:"price_cents"`
}

// Details is the resolved view of a cart returned to callers.
type Details struct {
	Cart  *domain.Cart `json:"cart"`
	Lines []LineDetail `json:"lines"`
}

// GetCartDetails resolves each line's product for display. Lines whose
// product has since left the catalog keep their id and price but carry
// an empty product name; display must not drop them silently.
func (s *Service) GetCartDetails(ctx context.Context, userID string) (*Details, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cart.Empty() {
		return &Details{Cart: cart}, nil
	}

	ids := make([]string, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		ids = append(ids, l.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	details := &Details{Cart: cart, Lines: make([]LineDetail, 0, len(cart.Lines))}
	for _, l := range cart.Lines {
		p, ok := byID[l.ProductID]
		if !ok {
			p = domain.Product{ID: l.ProductID}
		}
		details.Lines = append(details.Lines, LineDetail{
			Product:    p,
			Quantity:   l.Quantity,
			PriceCents: l.PriceCents,
		})
	}
	return details, nil
}

// AddProduct merges quantity of the product into the user's cart,
// creating the cart lazily on first use. The line price is always
// recomputed from the catalog's current unit price, never from a cached
// copy.
func (s *Service) AddProduct(ctx context.Context, userID, productID string, quantity int64) (*domain.Cart, error) {
	if !validObjectID(productID) {
		return nil, domain.ValidationErr("product", domain.MsgInvalidIDFormat)
	}
	if quantity <= 0 {
		return nil, domain.ValidationErr("cart", pricing.ErrInvalidQuantity.Error())
	}

	product, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, domain.NotFoundErr("product", productID)
	}
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		lines, delta, err := pricing.MergeLine(cart.Lines, product.ID, product.PriceCents, quantity)
		if err != nil {
			return domain.ValidationErr("cart", err.Error())
		}
		cart.Lines = lines
		cart.TotalCents += delta
		return nil
	})
}

// RemoveProduct drops the product's line entirely. The catalog is
// consulted first so a dangling reference surfaces as a product
// not-found rather than a confusing line miss.
func (s *Service) RemoveProduct(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	if _, err := s.carts.FindByUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, &domain.Error{Kind: domain.KindNotFound, Entity: "cart", ID: userID, Msg: domain.MsgCartNotFound}
		}
		return nil, err
	}

	if !validObjectID(productID) {
		return nil, domain.ValidationErr("product", domain.MsgInvalidIDFormat)
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, domain.NotFoundErr("product", productID)
		}
		return nil, err
	}

	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		lines, removed, err := pricing.RemoveLine(cart.Lines, productID)
		if errors.Is(err, pricing.ErrLineNotFound) {
			return &domain.Error{Kind: domain.KindNotFound, Entity: "cart_item", ID: productID, Msg: domain.MsgProductInCart}
		}
		if err != nil {
			return err
		}
		cart.Lines = lines
		cart.TotalCents -= removed
		if len(cart.Lines) == 0 {
			// Zero explicitly rather than trusting the subtraction.
			cart.TotalCents = 0
		}
		return nil
	})
}

// mutate runs the load -> apply -> persist cycle under the optimistic
// version check, replaying the whole cycle on conflict. Cache keys are
// invalidated synchronously before the mutation is acknowledged; the
// narrow per-cart key is then refreshed with the new snapshot.
func (s *Service) mutate(ctx context.Context, userID string, apply func(*domain.Cart) error) (*domain.Cart, error) {
	var saved *domain.Cart

	for attempt := 0; ; attempt++ {
		cart, err := s.carts.FindByUser(ctx, userID)
		if errors.Is(err, repository.ErrCartNotFound) {
			cart = &domain.Cart{UserID: userID}
		} else if err != nil {
			return nil, err
		}

		if err := apply(cart); err != nil {
			return nil, err
		}

		saved, err = s.carts.SaveCart(ctx, cart)
		if errors.Is(err, repository.ErrVersionConflict) {
			if attempt+1 >= maxSaveAttempts {
				return nil, err
			}
			s.log.Debug().Str("user_id", userID).Int("attempt", attempt+1).Msg("cart version conflict, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	invCtx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()
	s.cache.Invalidate(invCtx, userID)
	s.cache.Refresh(invCtx, saved)

	return saved, nil
}

// validObjectID checks the document id format before any lookup.
func validObjectID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
