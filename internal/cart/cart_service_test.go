package cart

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulnakum14/ecommerce-api-go/internal/cache"
	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
	"github.com/rahulnakum14/ecommerce-api-go/internal/repository"
	"github.com/rahulnakum14/ecommerce-api-go/pkg/metrics"
)

const (
	userID   = "64a000000000000000000001"
	productA = "64b000000000000000000001"
	productB = "64b000000000000000000002"
	productX = "64b0000000000000000000ff"
)

type mockCartRepo struct {
	m     sync.Mutex
	carts map[string]*domain.Cart
	saves int
	// conflictOnSaves injects a version conflict for the n-th save call
	// (1-based) to exercise the retry loop.
	conflictOnSaves map[int]bool
	err             error
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[string]*domain.Cart), conflictOnSaves: make(map[int]bool)}
}

func (r *mockCartRepo) FindByUser(_ context.Context, uid string) (*domain.Cart, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	cart, ok := r.carts[uid]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *cart
	cp.Lines = append([]domain.CartLine(nil), cart.Lines...)
	return &cp, nil
}

func (r *mockCartRepo) SaveCart(_ context.Context, cart *domain.Cart) (*domain.Cart, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.saves++
	if r.conflictOnSaves[r.saves] {
		return nil, repository.ErrVersionConflict
	}

	existing := r.carts[cart.UserID]
	if cart.Version == 0 {
		if existing != nil {
			return nil, repository.ErrVersionConflict
		}
	} else if existing == nil || existing.Version != cart.Version {
		return nil, repository.ErrVersionConflict
	}

	saved := *cart
	saved.Lines = append([]domain.CartLine(nil), cart.Lines...)
	saved.Version++
	saved.UpdatedAt = time.Now()
	if saved.ID == "" {
		saved.ID = "cart-" + cart.UserID
	}
	r.carts[cart.UserID] = &saved

	cp := saved
	return &cp, nil
}

type mockProductRepo struct {
	m        sync.Mutex
	products map[string]domain.Product
}

func newMockProductRepo(products ...domain.Product) *mockProductRepo {
	r := &mockProductRepo{products: make(map[string]domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *mockProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.m.Lock()
	defer r.m.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (r *mockProductRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	r.m.Lock()
	defer r.m.Unlock()
	var out []domain.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *mockProductRepo) FindAll(_ context.Context) ([]domain.Product, error) {
	r.m.Lock()
	defer r.m.Unlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

// mapStore backs a real CartCache so invalidation behavior is observed,
// not mocked away.
type mapStore struct {
	m    sync.Mutex
	data map[string][]byte
}

func newMapStore() *mapStore { return &mapStore{data: make(map[string][]byte)} }

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	s.m.Lock()
	defer s.m.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) Delete(_ context.Context, keys ...string) error {
	s.m.Lock()
	defer s.m.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *mapStore) has(key string) bool {
	s.m.Lock()
	defer s.m.Unlock()
	_, ok := s.data[key]
	return ok
}

func newTestService(products ...domain.Product) (*Service, *mockCartRepo, *mapStore) {
	repo := newMockCartRepo()
	store := newMapStore()
	log := zerolog.New(io.Discard)
	cc := cache.NewCartCache(store, time.Hour, log, metrics.NopCacheMetrics())
	return NewService(repo, newMockProductRepo(products...), cc, log), repo, store
}

func priced(id, name string, cents domain.Cents) domain.Product {
	return domain.Product{ID: id, Name: name, PriceCents: cents}
}

func TestGetCart_NoCartIsEmptyNotError(t *testing.T) {
	svc, _, _ := newTestService()

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, cart.Empty())
	assert.Equal(t, domain.Cents(0), cart.TotalCents)
}

// Scenario A: empty cart + add(productA price 10.00, qty 2) -> one line,
// total 20.00.
func TestAddProduct_NewCart(t *testing.T) {
	svc, _, _ := newTestService(priced(productA, "Widget", 1000))

	cart, err := svc.AddProduct(context.Background(), userID, productA, 2)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, productA, cart.Lines[0].ProductID)
	assert.Equal(t, int64(2), cart.Lines[0].Quantity)
	assert.Equal(t, domain.Cents(2000), cart.Lines[0].PriceCents)
	assert.Equal(t, domain.Cents(2000), cart.TotalCents)
}

// Scenario B: adding the same product again merges into one line with
// summed quantity, never two lines.
func TestAddProduct_MergesDuplicate(t *testing.T) {
	svc, _, _ := newTestService(priced(productA, "Widget", 1000))
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, userID, productA, 2)
	require.NoError(t, err)

	cart, err := svc.AddProduct(ctx, userID, productA, 3)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(5), cart.Lines[0].Quantity)
	assert.Equal(t, domain.Cents(5000), cart.Lines[0].PriceCents)
	assert.Equal(t, domain.Cents(5000), cart.TotalCents)
}

// Scenario C: removing the only line zeroes the total exactly.
func TestRemoveProduct_LastLineZeroesTotal(t *testing.T) {
	svc, _, _ := newTestService(priced(productA, "Widget", 1000))
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, userID, productA, 5)
	require.NoError(t, err)

	cart, err := svc.RemoveProduct(ctx, userID, productA)
	require.NoError(t, err)

	assert.Empty(t, cart.Lines)
	assert.Equal(t, domain.Cents(0), cart.TotalCents)
}

// Scenario E: removing a product that was never added fails and leaves
// the cart untouched.
func TestRemoveProduct_NotInCart(t *testing.T) {
	svc, repo, _ := newTestService(
		priced(productA, "Widget", 1000),
		priced(productX, "Gadget", 500),
	)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, userID, productA, 2)
	require.NoError(t, err)
	before, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)

	_, err = svc.RemoveProduct(ctx, userID, productX)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.ErrorContains(t, err, domain.MsgProductInCart)

	after, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, before.Lines, after.Lines)
	assert.Equal(t, before.TotalCents, after.TotalCents)
}

func TestRemoveProduct_NoCart(t *testing.T) {
	svc, _, _ := newTestService(priced(productA, "Widget", 1000))

	_, err := svc.RemoveProduct(context.Background(), userID, productA)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.ErrorContains(t, err, domain.MsgCartNotFound)
}

func TestRemoveProduct_ProductGoneFromCatalog(t *testing.T) {
	svc, _, _ := newTestService(priced(productA, "Widget", 1000))
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, userID, productA, 1)
	require.NoError(t, err)

	// Simulate the catalog losing the product after it was added.
	catalog := svc.products.(*mockProductRepo)
	catalog.m.Lock()
	delete(catalog.products, productA)
	catalog.m.Unlock()

	_, err = svc.RemoveProduct(ctx, userID, productA)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestAddProduct_InvalidIDFormat(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddProduct(context.Background(), userID, "short-id", 1)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestAddProduct_UnknownProduct(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddProduct(context.Background(), userID, productX, 1)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestAddProduct_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _, _ := newTestService(priced(productA, "Widget", 1000))

	_, err := svc.AddProduct(context.Background(), userID, productA, 0)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = svc.AddProduct(context.Background(), userID, productA, -2)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

// Total always equals the sum of line prices after any mutation sequence.
func TestTotalMatchesLineSum(t *testing.T) {
	svc, _, _ := newTestService(
		priced(productA, "Widget", 1099),
		priced(productB, "Gizmo", 250),
	)
	ctx := context.Background()

	steps := []func() (*domain.Cart, error){
		func() (*domain.Cart, error) { return svc.AddProduct(ctx, userID, productA, 3) },
		func() (*domain.Cart, error) { return svc.AddProduct(ctx, userID, productB, 7) },
		func() (*domain.Cart, error) { return svc.AddProduct(ctx, userID, productA, 2) },
		func() (*domain.Cart, error) { return svc.RemoveProduct(ctx, userID, productB) },
		func() (*domain.Cart, error) { return svc.AddProduct(ctx, userID, productB, 1) },
	}
	for _, step := range steps {
		cart, err := step()
		require.NoError(t, err)

		var sum domain.Cents
		for _, l := range cart.Lines {
			sum += l.PriceCents
		}
		assert.Equal(t, sum, cart.TotalCents)
	}
}

// After a mutation the aggregate key is gone and the per-cart key holds
// the post-mutation snapshot, never the stale one.
func TestMutationInvalidatesCache(t *testing.T) {
	svc, _, store := newTestService(priced(productA, "Widget", 1000))
	ctx := context.Background()

	store.Set(ctx, cache.KeyAllCarts, []byte("stale"), time.Hour)
	store.Set(ctx, cache.CartKey(userID), []byte(`{"user_id":"`+userID+`","total_cents":99}`), time.Hour)

	cart, err := svc.AddProduct(ctx, userID, productA, 2)
	require.NoError(t, err)

	assert.False(t, store.has(cache.KeyAllCarts))

	cached, ok := cache.NewCartCache(store, time.Hour, zerolog.New(io.Discard), metrics.NopCacheMetrics()).Get(ctx, userID)
	require.True(t, ok)
	assert.Equal(t, cart.TotalCents, cached.TotalCents)
}

func TestGetCart_ServesFromCache(t *testing.T) {
	svc, repo, _ := newTestService(priced(productA, "Widget", 1000))
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, userID, productA, 2)
	require.NoError(t, err)

	// Wipe the backing store; the refreshed per-cart key must answer.
	repo.m.Lock()
	repo.carts = map[string]*domain.Cart{}
	repo.m.Unlock()

	cart, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(2000), cart.TotalCents)
}

func TestAddProduct_RetriesOnVersionConflict(t *testing.T) {
	svc, repo, _ := newTestService(priced(productA, "Widget", 1000))
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, userID, productA, 1)
	require.NoError(t, err)

	repo.m.Lock()
	repo.conflictOnSaves[repo.saves+1] = true
	repo.m.Unlock()

	cart, err := svc.AddProduct(ctx, userID, productA, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cart.Lines[0].Quantity)
}

func TestAddProduct_GivesUpAfterBoundedRetries(t *testing.T) {
	svc, repo, _ := newTestService(priced(productA, "Widget", 1000))
	ctx := context.Background()

	repo.m.Lock()
	for i := 1; i <= maxSaveAttempts; i++ {
		repo.conflictOnSaves[i] = true
	}
	repo.m.Unlock()

	_, err := svc.AddProduct(ctx, userID, productA, 1)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
}

func TestGetCartDetails_ResolvesProducts(t *testing.T) {
	svc, _, _ := newTestService(
		priced(productA, "Widget", 1000),
		priced(productB, "Gizmo", 250),
	)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, userID, productA, 2)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, userID, productB, 1)
	require.NoError(t, err)

	details, err := svc.GetCartDetails(ctx, userID)
	require.NoError(t, err)

	require.Len(t, details.Lines, 2)
	assert.Equal(t, "Widget", details.Lines[0].Product.Name)
	assert.Equal(t, domain.Cents(2000), details.Lines[0].PriceCents)
	assert.Equal(t, "Gizmo", details.Lines[1].Product.Name)
}
