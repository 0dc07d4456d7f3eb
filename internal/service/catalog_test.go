package service

import (
	"context"
	"testing"

	"retail-orders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-process CatalogCache and ProductCache for tests.
type fakeCache struct {
	products map[int64]*models.Product
	hits     int
	misses   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{products: make(map[int64]*models.Product)}
}

func (f *fakeCache) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	if p, ok := f.products[productID]; ok {
		f.hits++
		return p, nil
	}
	f.misses++
	return nil, nil
}

func (f *fakeCache) SetProduct(ctx context.Context, product *models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeCache) InvalidateProduct(ctx context.Context, productID int64) error {
	delete(f.products, productID)
	return nil
}

func TestGetProductCacheAside(t *testing.T) {
	store := newTestStore()
	cache := newFakeCache()
	catalog := NewCatalogService(store, cache)
	ctx := context.Background()

	// Miss populates the cache; the second read is served from it.
	first, err := catalog.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Widget", first.Name)
	assert.Equal(t, 1, cache.misses)

	second, err := catalog.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, cache.hits)
}

func TestGetProductNotFound(t *testing.T) {
	catalog := NewCatalogService(newTestStore(), nil)

	_, err := catalog.GetProduct(context.Background(), 999)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPlaceOrderInvalidatesProductCache(t *testing.T) {
	store := newTestStore()
	cache := newFakeCache()
	catalog := NewCatalogService(store, cache)
	orders := NewOrderService(store, nil, cache)
	ctx := context.Background()

	before, err := catalog.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, before.Stock)

	_, err = orders.PlaceOrder(ctx, &PlaceOrderRequest{
		CustomerID: 1,
		Items:      []OrderItemRequest{{ProductID: 1, Quantity: 4}},
	})
	require.NoError(t, err)

	// Placement dropped the stale entry; the next read sees new stock.
	after, err := catalog.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, after.Stock)
}

func TestListPromoCodesActiveOnly(t *testing.T) {
	catalog := NewCatalogService(newTestStore(), nil)

	codes, err := catalog.ListPromoCodes(context.Background())
	require.NoError(t, err)

	require.Len(t, codes, 2)
	for _, code := range codes {
		assert.True(t, code.IsActive)
	}
}

func TestGetCustomer(t *testing.T) {
	catalog := NewCatalogService(newTestStore(), nil)
	ctx := context.Background()

	customer, err := catalog.GetCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", customer.Name)

	_, err = catalog.GetCustomer(ctx, 999)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
