// internal/domain/cart/errors.go
package cart

import "errors"

// Errors returned by cart operations. Stock and limit errors are returned by the
// quantity policy; the aggregator itself never fails.
var (
	ErrSessionRequired    = errors.New("cart session required")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidPrice       = errors.New("unit price cannot be negative")
	ErrProductUnavailable = errors.New("product or pack size not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrQuantityLimit      = errors.New("quantity exceeds the per-line limit")
	ErrEmptyCart          = errors.New("cart is empty")
)
