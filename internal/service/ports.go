package service

import (
	"context"

	"retail-orders/internal/models"
)

// EventPublisher publishes domain events after a transaction commits.
// Publishing is best-effort: a failure is logged, never rolled back into
// the already-committed operation.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderRefunded(ctx context.Context, event *models.OrderRefundedEvent) error
}

// ProductCache invalidates cached product reads once stock has moved.
type ProductCache interface {
	InvalidateProduct(ctx context.Context, productID int64) error
}
