package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"retail-orders/internal/models"
	"retail-orders/internal/storage"

	"github.com/jmoiron/sqlx"
)

// Tx wraps one database transaction. ForUpdate lookups hold row locks
// until commit so concurrent placements and refunds touching the same
// product or customer serialize.
type Tx struct {
	tx *sqlx.Tx
}

var _ storage.Tx = (*Tx)(nil)

// WithinTx runs fn inside a single transaction, rolling back on any
// error from fn or from commit.
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CustomerForUpdate loads a customer row-locked
func (t *Tx) CustomerForUpdate(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := t.tx.GetContext(ctx, &customer,
		"SELECT * FROM customers WHERE id = $1 FOR UPDATE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ProductForUpdate loads a product row-locked
func (t *Tx) ProductForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := t.tx.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 FOR UPDATE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// OrderForUpdate loads an order row-locked
func (t *Tx) OrderForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := t.tx.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 FOR UPDATE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// PromoCodeByCode retrieves a promo code by its code string. No lock:
// promo codes are read-only to the order flow.
func (t *Tx) PromoCodeByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := t.tx.GetContext(ctx, &promo,
		"SELECT * FROM promo_codes WHERE code = $1", code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// OrderItems retrieves all items for an order
func (t *Tx) OrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := t.tx.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// InsertOrder persists a new order, filling ID and CreatedAt
func (t *Tx) InsertOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (customer_id, status, subtotal, discount_amount, total, promo_code_used, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return t.tx.QueryRowxContext(ctx, query,
		order.CustomerID, order.Status, order.Subtotal, order.DiscountAmount,
		order.Total, order.PromoCodeUsed, order.IdempotencyKey,
	).Scan(&order.ID, &order.CreatedAt)
}

// InsertOrderItem persists a new order item, filling ID
func (t *Tx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return t.tx.QueryRowxContext(ctx, query,
		item.OrderID, item.ProductID, item.Quantity, item.PriceAtPurchase,
	).Scan(&item.ID)
}

// UpdateProductStock persists a product's stock count
func (t *Tx) UpdateProductStock(ctx context.Context, product *models.Product) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE products SET stock = $1 WHERE id = $2", product.Stock, product.ID)
	return err
}

// UpdateCustomerLoyalty persists a customer's point balance and tier
func (t *Tx) UpdateCustomerLoyalty(ctx context.Context, customer *models.Customer) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE customers SET loyalty_points = $1, loyalty_tier = $2 WHERE id = $3",
		customer.LoyaltyPoints, customer.LoyaltyTier, customer.ID)
	return err
}

// UpdateOrderRefunded persists an order's refunded status and amount
func (t *Tx) UpdateOrderRefunded(ctx context.Context, order *models.Order) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, refund_amount = $2 WHERE id = $3",
		order.Status, order.RefundAmount, order.ID)
	return err
}
