package worker

import (
	"context"
	"testing"
	"time"

	"retail-orders/internal/memstore"
	"retail-orders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordMarksEventProcessedOnce(t *testing.T) {
	eventLog := memstore.New()
	w := &AuditWorker{eventLog: eventLog, logger: zap.NewNop()}
	ctx := context.Background()

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID: 42,
		Total:   72.00,
	}

	audits := 0
	err := w.record(ctx, event.BaseEvent, func() { audits++ })
	require.NoError(t, err)
	assert.Equal(t, 1, audits)

	processed, err := eventLog.IsEventProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, processed)

	// Redelivery is a no-op.
	err = w.record(ctx, event.BaseEvent, func() { audits++ })
	require.NoError(t, err)
	assert.Equal(t, 1, audits)
}

func TestHandleOrderRefundedRecords(t *testing.T) {
	eventLog := memstore.New()
	w := &AuditWorker{eventLog: eventLog, logger: zap.NewNop()}
	ctx := context.Background()

	event := &models.OrderRefundedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-2",
			EventType: models.EventTypeOrderRefunded,
			Timestamp: time.Now(),
		},
		OrderID:      42,
		RefundAmount: 72.00,
	}

	require.NoError(t, w.handleOrderRefunded(ctx, event))

	processed, err := eventLog.IsEventProcessed(ctx, "evt-2")
	require.NoError(t, err)
	assert.True(t, processed)
}
