package models

import "time"

// Event types
const (
	EventTypeOrderPlaced   = "ORDER_PLACED"
	EventTypeOrderRefunded = "ORDER_REFUNDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when an order is placed and confirmed
type OrderPlacedEvent struct {
	BaseEvent
	OrderID        int64           `json:"order_id"`
	CustomerID     int64           `json:"customer_id"`
	Subtotal       float64         `json:"subtotal"`
	DiscountAmount float64         `json:"discount_amount"`
	Total          float64         `json:"total"`
	PromoCodeUsed  string          `json:"promo_code_used,omitempty"`
	Items          []OrderItemData `json:"items"`
}

// OrderRefundedEvent published when an order is refunded
type OrderRefundedEvent struct {
	BaseEvent
	OrderID      int64   `json:"order_id"`
	CustomerID   int64   `json:"customer_id"`
	RefundAmount float64 `json:"refund_amount"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID       int64   `json:"product_id"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}
