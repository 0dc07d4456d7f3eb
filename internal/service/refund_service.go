package service

import (
	"context"
	"database/sql"
	"fmt"
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

// RefundService processes full refunds. The refund amount is recomputed
// from the order items' frozen price-at-purchase, never from the
// product's current price, so later catalog price changes cannot alter
// what a customer gets back.
type RefundService struct {
	store  storage.Store
	events EventPublisher
	cache  ProductCache
	logger *zap.Logger
}

// NewRefundService creates a new refund service. events and cache may be
// nil when the caller runs without a broker or cache.
func NewRefundService(store storage.Store, events EventPublisher, cache ProductCache) *RefundService {
	return &RefundService{
		store:  store,
		events: events,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// RefundResponse reports the outcome of a processed refund
type RefundResponse struct {
	OrderID      int64   `json:"order_id"`
	RefundAmount float64 `json:"refund_amount"`
	Status       string  `json:"status"`
}

// ProcessRefund refunds an order in full: restores the stock decremented
// at placement, reverses the loyalty points awarded on the paid total,
// and marks the order refunded. All of it commits atomically; a second
// refund of the same order fails with ErrAlreadyRefunded and mutates
// nothing.
func (s *RefundService) ProcessRefund(ctx context.Context, orderID int64) (*RefundResponse, error) {
	ctx, span := util.StartSpan(ctx, "RefundService.ProcessRefund")
	defer span.End()

	start := time.Now()
	defer func() {
		util.RefundLatency.Observe(time.Since(start).Seconds())
	}()

	var (
		order *models.Order
		items []models.OrderItem
	)

	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		order, items, err = s.refundTx(ctx, tx, orderID)
		return err
	})
	if err != nil {
		util.RefundsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	util.RefundsProcessedTotal.Inc()
	s.logger.Info("Refund processed",
		zap.Int64("order_id", order.ID),
		zap.Float64("refund_amount", order.RefundAmount.Float64))

	s.afterRefund(ctx, order, items)

	return &RefundResponse{
		OrderID:      order.ID,
		RefundAmount: order.RefundAmount.Float64,
		Status:       order.Status,
	}, nil
}

// refundTx runs the refund steps inside one transaction.
func (s *RefundService) refundTx(ctx context.Context, tx storage.Tx, orderID int64) (*models.Order, []models.OrderItem, error) {
	order, err := tx.OrderForUpdate(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, nil, ErrOrderNotFound
	}
	if order.Status == models.OrderStatusRefunded {
		return nil, nil, ErrAlreadyRefunded
	}

	items, err := tx.OrderItems(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load order items: %w", err)
	}

	// Price-at-purchase is the sole source of truth here.
	var refundAmount float64
	for _, item := range items {
		refundAmount += item.PriceAtPurchase * float64(item.Quantity)
	}
	refundAmount = pricing.Round2(refundAmount)

	for _, item := range items {
		product, err := tx.ProductForUpdate(ctx, item.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load product %d: %w", item.ProductID, err)
		}
		if product == nil {
			// Product removed from the catalog since purchase; the
			// refund still proceeds, there is just no stock to restore.
			s.logger.Warn("Refund references missing product",
				zap.Int64("order_id", orderID),
				zap.Int64("product_id", item.ProductID))
			continue
		}
		inventory.Release(product, item.Quantity)
		if err := tx.UpdateProductStock(ctx, product); err != nil {
			return nil, nil, fmt.Errorf("failed to persist stock: %w", err)
		}
	}

	customer, err := tx.CustomerForUpdate(ctx, order.CustomerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		return nil, nil, fmt.Errorf("customer %d: %w", order.CustomerID, ErrCustomerNotFound)
	}

	loyalty.ReversePoints(customer, refundAmount)
	if err := tx.UpdateCustomerLoyalty(ctx, customer); err != nil {
		return nil, nil, fmt.Errorf("failed to persist loyalty: %w", err)
	}

	order.Status = models.OrderStatusRefunded
	order.RefundAmount = sql.NullFloat64{Float64: refundAmount, Valid: true}
	if err := tx.UpdateOrderRefunded(ctx, order); err != nil {
		return nil, nil, fmt.Errorf("failed to persist refund: %w", err)
	}

	return order, items, nil
}

// afterRefund runs the best-effort side effects of a committed refund.
func (s *RefundService) afterRefund(ctx context.Context, order *models.Order, items []models.OrderItem) {
	if s.events != nil {
		event := &models.OrderRefundedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderRefunded,
				Timestamp: time.Now(),
			},
			OrderID:      order.ID,
			CustomerID:   order.CustomerID,
			RefundAmount: order.RefundAmount.Float64,
		}
		if err := s.events.PublishOrderRefunded(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderRefunded event",
				zap.Int64("order_id", order.ID), zap.Error(err))
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
