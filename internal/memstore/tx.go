package memstore

import (
	"context"
	"time"

	"retail-orders/internal/models"
	"retail-orders/internal/storage"
)

// memTx stages mutations against the store. Reads inside the
// transaction see the staged state; commit applies it.
type memTx struct {
	store     *Store
	products  map[int64]*models.Product
	customers map[int64]*models.Customer
	orders    map[int64]*models.Order
	newItems  map[int64][]models.OrderItem
}

var _ storage.Tx = (*memTx)(nil)

func (t *memTx) CustomerForUpdate(ctx context.Context, id int64) (*models.Customer, error) {
	if c, ok := t.customers[id]; ok {
		return c, nil
	}
	c := cloneCustomer(t.store.customers[id])
	if c != nil {
		t.customers[id] = c
	}
	return c, nil
}

func (t *memTx) ProductForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	if p, ok := t.products[id]; ok {
		return p, nil
	}
	p := cloneProduct(t.store.products[id])
	if p != nil {
		t.products[id] = p
	}
	return p, nil
}

func (t *memTx) OrderForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	if o, ok := t.orders[id]; ok {
		return o, nil
	}
	o := cloneOrder(t.store.orders[id])
	if o != nil {
		t.orders[id] = o
	}
	return o, nil
}

func (t *memTx) PromoCodeByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	p := t.store.promoCodes[code]
	if p == nil {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (t *memTx) OrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	items := t.store.orderItems[orderID]
	out := make([]models.OrderItem, len(items))
	copy(out, items)
	return append(out, t.newItems[orderID]...), nil
}

func (t *memTx) InsertOrder(ctx context.Context, order *models.Order) error {
	t.store.nextOrderID++
	order.ID = t.store.nextOrderID
	order.CreatedAt = time.Now()
	t.orders[order.ID] = order
	return nil
}

func (t *memTx) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	t.store.nextOrderItemID++
	item.ID = t.store.nextOrderItemID
	t.newItems[item.OrderID] = append(t.newItems[item.OrderID], *item)
	return nil
}

func (t *memTx) UpdateProductStock(ctx context.Context, product *models.Product) error {
	t.products[product.ID] = product
	return nil
}

func (t *memTx) UpdateCustomerLoyalty(ctx context.Context, customer *models.Customer) error {
	t.customers[customer.ID] = customer
	return nil
}

func (t *memTx) UpdateOrderRefunded(ctx context.Context, order *models.Order) error {
	t.orders[order.ID] = order
	return nil
}

// commit applies the staged state. Caller holds the store mutex.
func (t *memTx) commit() {
	for id, p := range t.products {
		t.store.products[id] = p
	}
	for id, c := range t.customers {
		t.store.customers[id] = c
	}
	for id, o := range t.orders {
		t.store.orders[id] = o
	}
	for orderID, items := range t.newItems {
		t.store.orderItems[orderID] = append(t.store.orderItems[orderID], items...)
	}
}
