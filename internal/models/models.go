package models

import (
	"database/sql"
	"time"
)

// Loyalty tiers, derived from a customer's point balance
const (
	TierBronze = "bronze"
	TierSilver = "silver"
	TierGold   = "gold"
)

// Point thresholds for tier derivation
const (
	GoldThreshold   = 1000
	SilverThreshold = 500
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusRefunded  = "refunded"
)

// Product represents a product in the catalog. Stock is mutated only by
// the inventory guard and never goes negative.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	SKU         string    `db:"sku" json:"sku"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Stock       int       `db:"stock" json:"stock"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Customer represents a customer with a loyalty point balance.
// Points and tier are mutated only by the loyalty ledger.
type Customer struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	LoyaltyPoints int       `db:"loyalty_points" json:"loyalty_points"`
	LoyaltyTier   string    `db:"loyalty_tier" json:"loyalty_tier"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// PromoCode represents a promotional discount code. Read-only to the
// order and refund flows.
type PromoCode struct {
	ID              int64   `db:"id" json:"id"`
	Code            string  `db:"code" json:"code"`
	DiscountPercent float64 `db:"discount_percent" json:"discount_percent"`
	IsActive        bool    `db:"is_active" json:"is_active"`
	MinOrderAmount  float64 `db:"min_order_amount" json:"min_order_amount"`
}

// Order represents a placed order. Invariant: Total equals Subtotal minus
// DiscountAmount, both rounded to two decimal places. After placement the
// record is immutable except for Status and RefundAmount, which only the
// refund flow touches.
type Order struct {
	ID             int64           `db:"id" json:"id"`
	CustomerID     int64           `db:"customer_id" json:"customer_id"`
	Status         string          `db:"status" json:"status"`
	Subtotal       float64         `db:"subtotal" json:"subtotal"`
	DiscountAmount float64         `db:"discount_amount" json:"discount_amount"`
	Total          float64         `db:"total" json:"total"`
	RefundAmount   sql.NullFloat64 `db:"refund_amount" json:"refund_amount,omitempty"`
	PromoCodeUsed  sql.NullString  `db:"promo_code_used" json:"promo_code_used,omitempty"`
	IdempotencyKey string          `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// OrderItem represents one line of an order. PriceAtPurchase freezes the
// product's unit price at placement time; all refund math reads this
// field, never the product's current price.
type OrderItem struct {
	ID              int64   `db:"id" json:"id"`
	OrderID         int64   `db:"order_id" json:"order_id"`
	ProductID       int64   `db:"product_id" json:"product_id"`
	Quantity        int     `db:"quantity" json:"quantity"`
	PriceAtPurchase float64 `db:"price_at_purchase" json:"price_at_purchase"`
}

// TierForPoints derives the loyalty tier for a point balance. Derivation
// is live: a balance that drops below a threshold drops the tier too.
func TierForPoints(points int) string {
	switch {
	case points >= GoldThreshold:
		return TierGold
	case points >= SilverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}

// ProcessedEvent records a consumed domain event for idempotent handling.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
