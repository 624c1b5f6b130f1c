// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/authz"
	"github.com/your-org/hardware-admin/internal/domain/cart"
	"github.com/your-org/hardware-admin/internal/domain/customer"
	"github.com/your-org/hardware-admin/internal/domain/inventory"
	"github.com/your-org/hardware-admin/internal/domain/invoice"
	"github.com/your-org/hardware-admin/internal/domain/order"
	"github.com/your-org/hardware-admin/internal/domain/product"
	"github.com/your-org/hardware-admin/internal/domain/supplier"
	"github.com/your-org/hardware-admin/internal/domain/user"
	"github.com/your-org/hardware-admin/internal/interfaces/http/middleware"
	"github.com/your-org/hardware-admin/internal/pkg/auth"
)

// errorStatuses maps domain errors to HTTP statuses. Anything unlisted is a 500.
var errorStatuses = []struct {
	err    error
	status int
}{
	// 400
	{cart.ErrSessionRequired, http.StatusBadRequest},
	{cart.ErrInvalidQuantity, http.StatusBadRequest},
	{cart.ErrInvalidPrice, http.StatusBadRequest},
	{product.ErrNegativePrice, http.StatusBadRequest},
	{product.ErrNoPackSizes, http.StatusBadRequest},
	{inventory.ErrInvalidQuantity, http.StatusBadRequest},
	{inventory.ErrInvalidReason, http.StatusBadRequest},
	{order.ErrInvalidStatus, http.StatusBadRequest},
	{order.ErrInvalidPaymentStatus, http.StatusBadRequest},
	{order.ErrInvalidDiscount, http.StatusBadRequest},
	{order.ErrInvalidDateFilter, http.StatusBadRequest},
	{user.ErrInvalidRole, http.StatusBadRequest},
	{auth.ErrWeakPassword, http.StatusBadRequest},
	{user.ErrWrongPassword, http.StatusBadRequest},
	{authz.ErrInvalidPolicy, http.StatusBadRequest},

	// 401
	{user.ErrInvalidCredentials, http.StatusUnauthorized},
	{user.ErrUserInactive, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},

	// 403
	{order.ErrForbidden, http.StatusForbidden},
	{user.ErrSelfChange, http.StatusForbidden},

	// 404
	{product.ErrProductNotFound, http.StatusNotFound},
	{product.ErrPackSizeNotFound, http.StatusNotFound},
	{product.ErrCategoryNotFound, http.StatusNotFound},
	{supplier.ErrSupplierNotFound, http.StatusNotFound},
	{customer.ErrCustomerNotFound, http.StatusNotFound},
	{inventory.ErrStockItemNotFound, http.StatusNotFound},
	{inventory.ErrAlertNotFound, http.StatusNotFound},
	{order.ErrOrderNotFound, http.StatusNotFound},
	{user.ErrUserNotFound, http.StatusNotFound},
	{cart.ErrProductUnavailable, http.StatusNotFound},

	// 409
	{product.ErrDuplicateSKU, http.StatusConflict},
	{product.ErrDuplicatePackSize, http.StatusConflict},
	{product.ErrDuplicateCategory, http.StatusConflict},
	{product.ErrCategoryInUse, http.StatusConflict},
	{supplier.ErrDuplicateSupplier, http.StatusConflict},
	{customer.ErrDuplicateEmail, http.StatusConflict},
	{user.ErrDuplicateEmail, http.StatusConflict},
	{user.ErrLastAdmin, http.StatusConflict},
	{order.ErrInvalidStatusTransition, http.StatusConflict},
	{order.ErrInvalidPaymentChange, http.StatusConflict},
	{order.ErrCannotCancel, http.StatusConflict},
	{invoice.ErrOrderCancelled, http.StatusConflict},
	{cart.ErrInsufficientStock, http.StatusConflict},
	{cart.ErrQuantityLimit, http.StatusConflict},

	// 422
	{cart.ErrEmptyCart, http.StatusUnprocessableEntity},
	{customer.ErrCustomerInactive, http.StatusUnprocessableEntity},
	{invoice.ErrNoRecipient, http.StatusUnprocessableEntity},
}

// statusFor returns the HTTP status of a domain error
func statusFor(err error) int {
	for _, mapping := range errorStatuses {
		if errors.Is(err, mapping.err) {
			return mapping.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes a domain error. Unexpected errors are logged and hidden
// behind fallback.
func respondError(c *gin.Context, logger *logrus.Logger, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.ContextRequestID),
			"path":       c.Request.URL.Path,
		}).Error(fallback)
		c.JSON(status, gin.H{
			"error": fallback,
		})
		return
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}

// respondBindError writes a request validation failure
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// parseIDParam reads a numeric path parameter, answering 400 when it is not one
func parseIDParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + label + " ID",
		})
		return 0, false
	}
	return uint(id), true
}

// actorFromContext describes the signed-in user for order visibility rules
func actorFromContext(c *gin.Context) order.Actor {
	userID, _ := middleware.GetUserIDFromContext(c)
	return order.Actor{
		UserID:         userID,
		Representative: !middleware.IsAdminFromContext(c),
	}
}

// sessionFromContext returns the cart session carried by the access token
func sessionFromContext(c *gin.Context) (string, bool) {
	sessionID, ok := middleware.GetSessionIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": cart.ErrSessionRequired.Error(),
		})
	}
	return sessionID, ok
}
