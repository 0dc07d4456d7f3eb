package worker

import (
	"context"
	"fmt"

	"retail-orders/internal/broker"
	"retail-orders/internal/models"
	"retail-orders/internal/storage"
	"retail-orders/internal/util"

	"go.uber.org/zap"
)

// AuditWorker consumes order events and records them in the processed
// event log, giving downstream consumers an idempotency checkpoint and
// the operators a consumption trail. Handling an event twice is a no-op.
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	eventLog     storage.EventLog
	logger       *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, eventLog storage.EventLog) *AuditWorker {
	w := &AuditWorker{
		consumer: consumer,
		eventLog: eventLog,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	eventHandler.OnOrderRefunded(w.handleOrderRefunded)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting audit worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	w.logger.Info("Stopping audit worker")
	return w.consumer.Close()
}

func (w *AuditWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return w.record(ctx, event.BaseEvent, func() {
		w.logger.Info("Order placed",
			zap.Int64("order_id", event.OrderID),
			zap.Int64("customer_id", event.CustomerID),
			zap.Float64("total", event.Total),
			zap.Int("lines", len(event.Items)))
	})
}

func (w *AuditWorker) handleOrderRefunded(ctx context.Context, event *models.OrderRefundedEvent) error {
	return w.record(ctx, event.BaseEvent, func() {
		w.logger.Info("Order refunded",
			zap.Int64("order_id", event.OrderID),
			zap.Int64("customer_id", event.CustomerID),
			zap.Float64("refund_amount", event.RefundAmount))
	})
}

// record marks the event processed exactly once and runs audit on the
// first sighting.
func (w *AuditWorker) record(ctx context.Context, base models.BaseEvent, audit func()) error {
	processed, err := w.eventLog.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		w.logger.Debug("Event already processed", zap.String("event_id", base.EventID))
		return nil
	}

	audit()

	if err := w.eventLog.MarkEventProcessed(ctx, base.EventID, base.EventType); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	util.EventsConsumedTotal.WithLabelValues(base.EventType).Inc()
	return nil
}
