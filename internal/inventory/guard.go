// Package inventory guards product stock counts. Stock never goes
// negative: Reserve refuses any decrement it cannot fully satisfy.
package inventory

import (
	"fmt"

	"retail-orders/internal/models"
)

// InsufficientStockError reports a reservation that exceeds available
// stock. The message carries the product name and both quantities so the
// calling layer can surface it verbatim.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// Check validates that a reservation would succeed without mutating
// anything. The order service checks every line before decrementing any,
// so a failure on a later line leaves all stock untouched.
func Check(p *models.Product, quantity int) error {
	if p.Stock < quantity {
		return &InsufficientStockError{
			ProductName: p.Name,
			Requested:   quantity,
			Available:   p.Stock,
		}
	}
	return nil
}

// Reserve decrements stock by quantity, failing with
// *InsufficientStockError if the product cannot cover it.
func Reserve(p *models.Product, quantity int) error {
	if err := Check(p, quantity); err != nil {
		return err
	}
	p.Stock -= quantity
	return nil
}

// Release returns quantity units to stock. Used on refund.
func Release(p *models.Product, quantity int) {
	p.Stock += quantity
}
