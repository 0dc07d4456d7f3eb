// Package storage defines the transactional record-store ports the
// services run against. The postgres-backed implementation lives in
// internal/store; internal/memstore provides an in-memory one for tests.
package storage

import (
	"context"

	"retail-orders/internal/models"
)

// Lookup methods return (nil, nil) when the record is absent; the
// services translate absence into their typed domain errors.

// Store is the storage collaborator handed to the services. WithinTx
// runs fn inside one transaction: every read, check, and mutation in fn
// commits together or not at all. If fn returns an error the transaction
// rolls back and the error is returned unchanged.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	ProductByID(ctx context.Context, id int64) (*models.Product, error)
	Products(ctx context.Context) ([]models.Product, error)
	CustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	Customers(ctx context.Context) ([]models.Customer, error)
	ActivePromoCodes(ctx context.Context) ([]models.PromoCode, error)
	OrderByID(ctx context.Context, id int64) (*models.Order, error)
	OrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	Orders(ctx context.Context, customerID int64) ([]models.Order, error)
	OrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
}

// Tx exposes record access inside one transaction. ForUpdate lookups
// take an exclusive per-row lock held until commit, so concurrent
// placements and refunds touching the same product or customer
// serialize instead of racing a stale read-modify-write.
type Tx interface {
	CustomerForUpdate(ctx context.Context, id int64) (*models.Customer, error)
	ProductForUpdate(ctx context.Context, id int64) (*models.Product, error)
	OrderForUpdate(ctx context.Context, id int64) (*models.Order, error)
	PromoCodeByCode(ctx context.Context, code string) (*models.PromoCode, error)
	OrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)

	InsertOrder(ctx context.Context, order *models.Order) error
	InsertOrderItem(ctx context.Context, item *models.OrderItem) error
	UpdateProductStock(ctx context.Context, product *models.Product) error
	UpdateCustomerLoyalty(ctx context.Context, customer *models.Customer) error
	UpdateOrderRefunded(ctx context.Context, order *models.Order) error
}

// EventLog tracks consumed domain events for idempotent handling.
type EventLog interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}
