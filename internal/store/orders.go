package store

import (
	"context"
	"database/sql"
	"errors"

	"retail-orders/internal/models"
)

// OrderByID retrieves an order by ID
func (s *Store) OrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderByIdempotencyKey retrieves an order by idempotency key
func (s *Store) OrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE idempotency_key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Orders retrieves orders, newest first, optionally filtered by customer.
// customerID 0 means all customers.
func (s *Store) Orders(ctx context.Context, customerID int64) ([]models.Order, error) {
	var orders []models.Order
	if customerID > 0 {
		err := s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
		return orders, err
	}
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// OrderItems retrieves all items for an order
func (s *Store) OrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}
