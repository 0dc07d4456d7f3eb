// Package memstore is an in-memory implementation of the storage ports,
// used by tests and for running the service without Postgres. A single
// mutex serializes transactions, which gives the same exclusive-write
// discipline the Postgres store gets from row locks. Mutations are
// staged per transaction and applied on commit, so a failed operation
// leaves no partial effects.
package memstore

import (
	"context"
	"sort"
	"sync"

	"retail-orders/internal/models"
	"retail-orders/internal/storage"
)

// Store is an in-memory record store.
type Store struct {
	mu         sync.Mutex
	products   map[int64]*models.Product
	customers  map[int64]*models.Customer
	promoCodes map[string]*models.PromoCode
	orders     map[int64]*models.Order
	orderItems map[int64][]models.OrderItem
	processed  map[string]string

	nextOrderID     int64
	nextOrderItemID int64
}

var (
	_ storage.Store    = (*Store)(nil)
	_ storage.EventLog = (*Store)(nil)
)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		products:   make(map[int64]*models.Product),
		customers:  make(map[int64]*models.Customer),
		promoCodes: make(map[string]*models.PromoCode),
		orders:     make(map[int64]*models.Order),
		orderItems: make(map[int64][]models.OrderItem),
		processed:  make(map[string]string),
	}
}

// Seed helpers for tests and local runs.

// AddProduct stores a product.
func (s *Store) AddProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

// AddCustomer stores a customer.
func (s *Store) AddCustomer(c models.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = &c
}

// AddPromoCode stores a promo code.
func (s *Store) AddPromoCode(p models.PromoCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promoCodes[p.Code] = &p
}

// RemoveProduct deletes a product from the catalog.
func (s *Store) RemoveProduct(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// WithinTx runs fn against a staged view of the store. The store mutex
// is held for the whole transaction; staged mutations are applied only
// when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:     s,
		products:  make(map[int64]*models.Product),
		customers: make(map[int64]*models.Customer),
		orders:    make(map[int64]*models.Order),
		newItems:  make(map[int64][]models.OrderItem),
	}

	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

// ProductByID retrieves a product by ID.
func (s *Store) ProductByID(ctx context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProduct(s.products[id]), nil
}

// Products retrieves all products ordered by ID.
func (s *Store) Products(ctx context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CustomerByID retrieves a customer by ID.
func (s *Store) CustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCustomer(s.customers[id]), nil
}

// Customers retrieves all customers ordered by ID.
func (s *Store) Customers(ctx context.Context) ([]models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ActivePromoCodes retrieves all active promo codes ordered by code.
func (s *Store) ActivePromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.PromoCode, 0, len(s.promoCodes))
	for _, p := range s.promoCodes {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// OrderByID retrieves an order by ID.
func (s *Store) OrderByID(ctx context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.orders[id]), nil
}

// OrderByIdempotencyKey retrieves an order by idempotency key.
func (s *Store) OrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.IdempotencyKey == key {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

// Orders retrieves orders, optionally filtered by customer.
func (s *Store) Orders(ctx context.Context, customerID int64) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if customerID == 0 || o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// OrderItems retrieves all items for an order.
func (s *Store) OrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.orderItems[orderID]
	out := make([]models.OrderItem, len(items))
	copy(out, items)
	return out, nil
}

// IsEventProcessed checks if a domain event has been processed.
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processed[eventID]
	return ok, nil
}

// MarkEventProcessed marks a domain event as processed.
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[eventID] = eventType
	return nil
}

func cloneProduct(p *models.Product) *models.Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func cloneCustomer(c *models.Customer) *models.Customer {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

func cloneOrder(o *models.Order) *models.Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}
