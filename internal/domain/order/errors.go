// internal/domain/order/errors.go
package order

import "errors"

// Errors returned by order operations
var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidPaymentStatus    = errors.New("invalid payment status")
	ErrInvalidPaymentChange    = errors.New("invalid payment status change")
	ErrCannotCancel            = errors.New("order cannot be cancelled in its current status")
	ErrInvalidDiscount         = errors.New("discount must be between zero and the order subtotal")
	ErrInvalidDateFilter       = errors.New("dates must use the YYYY-MM-DD format")
	ErrForbidden               = errors.New("not allowed to change this order")
)
