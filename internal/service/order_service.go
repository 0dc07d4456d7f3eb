package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"retail-orders/internal/inventory"
	"retail-orders/internal/loyalty"
	"retail-orders/internal/models"
	"retail-orders/internal/pricing"
	"retail-orders/internal/storage"
	"retail-orders/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService orchestrates order placement as one atomic operation:
// stock validation and reservation, discount computation, loyalty point
// award, and order persistence all commit together or not at all.
type OrderService struct {
	store  storage.Store
	events EventPublisher
	cache  ProductCache
	logger *zap.Logger
}

// NewOrderService creates a new order service. events and cache may be
// nil when the caller runs without a broker or cache.
func NewOrderService(store storage.Store, events EventPublisher, cache ProductCache) *OrderService {
	return &OrderService{
		store:  store,
		events: events,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// PlaceOrderRequest represents a request to place an order
type PlaceOrderRequest struct {
	CustomerID     int64              `json:"customer_id" binding:"required"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1"`
	PromoCode      string             `json:"promo_code,omitempty"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
}

// OrderItemRequest represents one requested order line
type OrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderResponse carries the persisted order and its items
type PlaceOrderResponse struct {
	Order *models.Order      `json:"order"`
	Items []models.OrderItem `json:"items"`
}

// PlaceOrder places a new order for a customer. On any failure nothing
// is mutated: no stock is decremented, no points move, no order row is
// written. Replaying a request with the same idempotency key returns the
// already-placed order without re-executing.
func (s *OrderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	if len(req.Items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("invalid_request").Inc()
		return nil, ErrNoItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			util.OrdersFailedTotal.WithLabelValues("invalid_request").Inc()
			return nil, ErrInvalidQuantity
		}
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	if existing, err := s.store.OrderByIdempotencyKey(ctx, req.IdempotencyKey); err != nil {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	} else if existing != nil {
		s.logger.Info("Duplicate order request detected",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.Int64("order_id", existing.ID))
		items, err := s.store.OrderItems(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		return &PlaceOrderResponse{Order: existing, Items: items}, nil
	}

	var (
		order      *models.Order
		orderItems []models.OrderItem
		event      *models.OrderPlacedEvent
	)

	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		order, orderItems, event, err = s.placeOrderTx(ctx, tx, req)
		return err
	})
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", order.CustomerID),
		zap.Float64("total", order.Total))

	s.afterPlacement(ctx, orderItems, event)

	return &PlaceOrderResponse{Order: order, Items: orderItems}, nil
}

// placeOrderTx runs the placement steps inside one transaction.
func (s *OrderService) placeOrderTx(ctx context.Context, tx storage.Tx, req *PlaceOrderRequest) (*models.Order, []models.OrderItem, *models.OrderPlacedEvent, error) {
	customer, err := tx.CustomerForUpdate(ctx, req.CustomerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		return nil, nil, nil, ErrCustomerNotFound
	}

	var promo *models.PromoCode
	if req.PromoCode != "" {
		promo, err = tx.PromoCodeByCode(ctx, req.PromoCode)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load promo code: %w", err)
		}
		if promo == nil || !promo.IsActive {
			return nil, nil, nil, &InvalidPromoCodeError{Code: req.PromoCode}
		}
	}

	products, err := s.lockProducts(ctx, tx, req.Items)
	if err != nil {
		return nil, nil, nil, err
	}

	// Validate every line before decrementing anything, so a failure on
	// a later line cannot leave earlier lines partially reserved.
	required := make(map[int64]int)
	for _, item := range req.Items {
		required[item.ProductID] += item.Quantity
	}
	for productID, quantity := range required {
		if err := inventory.Check(products[productID], quantity); err != nil {
			return nil, nil, nil, err
		}
	}

	var subtotal float64
	orderItems := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		product := products[item.ProductID]

		if err := inventory.Reserve(product, item.Quantity); err != nil {
			return nil, nil, nil, err
		}

		subtotal += product.Price * float64(item.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ProductID:       product.ID,
			Quantity:        item.Quantity,
			PriceAtPurchase: product.Price,
		})
	}

	breakdown := pricing.CalculateBreakdown(subtotal, customer.LoyaltyTier, promo)

	loyalty.AwardPoints(customer, breakdown.FinalTotal)

	for _, product := range products {
		if err := tx.UpdateProductStock(ctx, product); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to persist stock: %w", err)
		}
	}
	if err := tx.UpdateCustomerLoyalty(ctx, customer); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to persist loyalty: %w", err)
	}

	order := &models.Order{
		CustomerID:     customer.ID,
		Status:         models.OrderStatusConfirmed,
		Subtotal:       pricing.Round2(subtotal),
		DiscountAmount: breakdown.DiscountAmount,
		Total:          breakdown.FinalTotal,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.PromoCode != "" {
		order.PromoCodeUsed = sql.NullString{String: req.PromoCode, Valid: true}
	}

	if err := tx.InsertOrder(ctx, order); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	eventItems := make([]models.OrderItemData, 0, len(orderItems))
	for i := range orderItems {
		orderItems[i].OrderID = order.ID
		if err := tx.InsertOrderItem(ctx, &orderItems[i]); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create order item: %w", err)
		}
		eventItems = append(eventItems, models.OrderItemData{
			ProductID:       orderItems[i].ProductID,
			Quantity:        orderItems[i].Quantity,
			PriceAtPurchase: orderItems[i].PriceAtPurchase,
		})
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		Subtotal:       order.Subtotal,
		DiscountAmount: order.DiscountAmount,
		Total:          order.Total,
		PromoCodeUsed:  req.PromoCode,
		Items:          eventItems,
	}

	return order, orderItems, event, nil
}

// lockProducts loads every referenced product row-locked, in ascending
// ID order so concurrent placements cannot deadlock on each other.
func (s *OrderService) lockProducts(ctx context.Context, tx storage.Tx, items []OrderItemRequest) (map[int64]*models.Product, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool)
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products := make(map[int64]*models.Product, len(ids))
	for _, id := range ids {
		product, err := tx.ProductForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load product %d: %w", id, err)
		}
		if product == nil {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		products[id] = product
	}
	return products, nil
}

// afterPlacement runs the best-effort side effects of a committed order.
func (s *OrderService) afterPlacement(ctx context.Context, items []models.OrderItem, event *models.OrderPlacedEvent) {
	if s.events != nil {
		if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderPlaced event",
				zap.Int64("order_id", event.OrderID), zap.Error(err))
		}
	}
	if s.cache != nil {
		for _, item := range items {
			if err := s.cache.InvalidateProduct(ctx, item.ProductID); err != nil {
				s.logger.Warn("Failed to invalidate product cache",
					zap.Int64("product_id", item.ProductID), zap.Error(err))
			}
		}
	}
}

// GetOrder retrieves an order and its items by ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, ErrOrderNotFound
	}

	items, err := s.store.OrderItems(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// ListOrders retrieves orders, optionally filtered by customer.
// customerID 0 means all customers.
func (s *OrderService) ListOrders(ctx context.Context, customerID int64) ([]models.Order, error) {
	return s.store.Orders(ctx, customerID)
}

// failureReason maps an error to a metrics label.
func failureReason(err error) string {
	var stockErr *inventory.InsufficientStockError
	var promoErr *InvalidPromoCodeError
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		return "customer_not_found"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrAlreadyRefunded):
		return "already_refunded"
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.As(err, &promoErr):
		return "invalid_promo_code"
	default:
		return "storage_error"
	}
}
