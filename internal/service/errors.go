package service

import (
	"errors"
	"fmt"
)

// Domain failures. All are expected, recoverable-by-caller conditions:
// the services return them with zero partial effect and the API layer
// maps them to status codes. Insufficient stock is reported with
// *inventory.InsufficientStockError.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrAlreadyRefunded  = errors.New("order already refunded")
	ErrNoItems          = errors.New("order must contain at least one item")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

// InvalidPromoCodeError reports a promo code that is absent or inactive.
// The two cases are deliberately indistinguishable to the caller.
type InvalidPromoCodeError struct {
	Code string
}

func (e *InvalidPromoCodeError) Error() string {
	return fmt.Sprintf("invalid or expired promo code: %s", e.Code)
}
