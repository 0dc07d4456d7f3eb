package service

import (
	"context"
	"testing"

	"retail-orders/internal/inventory"
	"retail-orders/internal/memstore"
	"retail-orders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *memstore.Store {
	s := memstore.New()
	s.AddProduct(models.Product{ID: 1, SKU: "WDG-1", Name: "Widget", Price: 50.00, Stock: 10})
	s.AddProduct(models.Product{ID: 2, SKU: "GDG-1", Name: "Gadget", Price: 19.99, Stock: 3})
	s.AddCustomer(models.Customer{ID: 1, Name: "Ada", Email: "ada@example.com", LoyaltyPoints: 0, LoyaltyTier: models.TierBronze})
	s.AddCustomer(models.Customer{ID: 2, Name: "Grace", Email: "grace@example.com", LoyaltyPoints: 1200, LoyaltyTier: models.TierGold})
	s.AddPromoCode(models.PromoCode{ID: 1, Code: "SAVE20", DiscountPercent: 20.0, IsActive: true})
	s.AddPromoCode(models.PromoCode{ID: 2, Code: "EXPIRED", DiscountPercent: 50.0, IsActive: false})
	s.AddPromoCode(models.PromoCode{ID: 3, Code: "BIG100", DiscountPercent: 10.0, IsActive: true, MinOrderAmount: 100.00})
	return s
}

func TestPlaceOrder(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)
	ctx := context.Background()

	resp, err := svc.PlaceOrder(ctx, &PlaceOrderRequest{
		CustomerID: 1,
		Items:      []OrderItemRequest{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	order := resp.Order
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, 100.00, order.Subtotal)
	assert.Equal(t, 0.00, order.DiscountAmount)
	assert.Equal(t, 100.00, order.Total)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 50.00, resp.Items[0].PriceAtPurchase)
	assert.Equal(t, 2, resp.Items[0].Quantity)

	product, err := store.ProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, product.Stock)

	customer, err := store.CustomerByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, customer.LoyaltyPoints)
}

func TestPlaceOrderTotalInvariant(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)

	resp, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		CustomerID: 2, // gold
		Items:      []OrderItemRequest{{ProductID: 2, Quantity: 3}},
		PromoCode:  "SAVE20",
	})
	require.NoError(t, err)

	order := resp.Order
	assert.InDelta(t, order.Subtotal-order.DiscountAmount, order.Total, 0.005)
}

func TestPlaceOrderDiscountStacking(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)

	// Gold 10% off 100.00, then 20% promo off the 90.00 remainder.
	resp, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		CustomerID: 2,
		Items:      []OrderItemRequest{{ProductID: 1, Quantity: 2}},
		PromoCode:  "SAVE20",
	})
	require.NoError(t, err)

	assert.Equal(t, 100.00, resp.Order.Subtotal)
	assert.Equal(t, 28.00, resp.Order.DiscountAmount)
	assert.Equal(t, 72.00, resp.Order.Total)
	assert.Equal(t, "SAVE20", resp.Order.PromoCodeUsed.String)
}

func TestPlaceOrderPromoBelowMinimum(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)

	// 3 × 19.99 = 59.97, below BIG100's 100.00 threshold: the promo
	// contributes nothing and the order still goes through.
	resp, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		CustomerID: 1,
		Items:      []OrderItemRequest{{ProductID: 2, Quantity: 3}},
		PromoCode:  "BIG100",
	})
	require.NoError(t, err)

	assert.Equal(t, 59.97, resp.Order.Subtotal)
	assert.Equal(t, 0.00, resp.Order.DiscountAmount)
	assert.Equal(t, 59.97, resp.Order.Total)
}

func TestPlaceOrderCustomerNotFound(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)

	_, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		CustomerID: 999,
		Items:      []OrderItemRequest{{ProductID: 1, Quantity: 1}},
	})

	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestPlaceOrderProductNotFound(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)

	_, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		CustomerID: 1,
		Items:      []OrderItemRequest{{ProductID: 999, Quantity: 1}},
	})

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPlaceOrderInvalidPromoCode(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)
	ctx := context.Background()

	for _, code := range []string{"NOSUCH", "EXPIRED"} {
		_, err := svc.PlaceOrder(ctx, &PlaceOrderRequest{
			CustomerID: 1,
			Items:      []OrderItemRequest{{ProductID: 1, Quantity: 1}},
			PromoCode:  code,
		})

		var promoErr *InvalidPromoCodeError
		require.ErrorAs(t, err, &promoErr, "code %s", code)
		assert.Equal(t, code, promoErr.Code)
	}

	// Neither attempt may have touched stock.
	product, err := store.ProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Stock)
}

func TestPlaceOrderInsufficientStockLeavesNoTrace(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)
	ctx := context.Background()

	// First line is satisfiable, second is not: all-or-nothing means
	// neither product loses stock and no points move.
	_, err := svc.PlaceOrder(ctx, &PlaceOrderRequest{
		CustomerID: 1,
		Items: []OrderItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 5},
		},
	})

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Gadget", stockErr.ProductName)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	p1, err := store.ProductByID(ctx, 1)
	require.NoError(t, err)
	p2, err := store.ProductByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, p1.Stock)
	assert.Equal(t, 3, p2.Stock)

	customer, err := store.CustomerByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, customer.LoyaltyPoints)

	orders, err := store.Orders(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrderDuplicateLinesValidatedTogether(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)

	// Two lines for the same product must be validated against the
	// combined quantity, not one line at a time.
	_, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		CustomerID: 1,
		Items: []OrderItemRequest{
			{ProductID: 2, Quantity: 2},
			{ProductID: 2, Quantity: 2},
		},
	})

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Requested)
}

func TestPlaceOrderTierUpgrade(t *testing.T) {
	store := newTestStore()
	store.AddCustomer(models.Customer{ID: 3, Name: "Joan", Email: "joan@example.com", LoyaltyPoints: 450, LoyaltyTier: models.TierBronze})
	svc := NewOrderService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, &PlaceOrderRequest{
		CustomerID: 3,
		Items:      []OrderItemRequest{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	customer, err := store.CustomerByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 550, customer.LoyaltyPoints)
	assert.Equal(t, models.TierSilver, customer.LoyaltyTier)
}

func TestPlaceOrderIdempotencyReplay(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)
	ctx := context.Background()

	req := &PlaceOrderRequest{
		CustomerID:     1,
		Items:          []OrderItemRequest{{ProductID: 1, Quantity: 1}},
		IdempotencyKey: "replay-me",
	}

	first, err := svc.PlaceOrder(ctx, req)
	require.NoError(t, err)

	second, err := svc.PlaceOrder(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.Order.ID, second.Order.ID)

	// Replay must not decrement stock or award points again.
	product, err := store.ProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, product.Stock)

	customer, err := store.CustomerByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 50, customer.LoyaltyPoints)
}

func TestPlaceOrderRejectsBadRequests(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, &PlaceOrderRequest{CustomerID: 1})
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = svc.PlaceOrder(ctx, &PlaceOrderRequest{
		CustomerID: 1,
		Items:      []OrderItemRequest{{ProductID: 1, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestGetOrder(t *testing.T) {
	store := newTestStore()
	svc := NewOrderService(store, nil, nil)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, &PlaceOrderRequest{
		CustomerID: 1,
		Items:      []OrderItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	order, items, err := svc.GetOrder(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.Order.ID, order.ID)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)

	_, _, err = svc.GetOrder(ctx, 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
