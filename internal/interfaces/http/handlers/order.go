// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/order"
)

// OrderHandler handles order (bill) endpoints
type OrderHandler struct {
	orderService *order.Service
	logger       *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// CreateOrder handles POST /orders. The session cart becomes the order lines.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	sessionID, ok := sessionFromContext(c)
	if !ok {
		return
	}

	var req order.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.Checkout(c.Request.Context(), sessionID, actorFromContext(c), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"data":    o,
	})
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.orderService.GetOrders(actorFromContext(c), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    response,
	})
}

// GetStatusOptions handles GET /orders/statuses
func (h *OrderHandler) GetStatusOptions(c *gin.Context) {
	options, err := h.orderService.StatusOptions(actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve order statuses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order statuses retrieved successfully",
		"data":    options,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrder(actorFromContext(c), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// GetOrderByNumber handles GET /orders/number/:number
func (h *OrderHandler) GetOrderByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Order number is required",
		})
		return
	}

	o, err := h.orderService.GetOrderByNumber(actorFromContext(c), number)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// UpdateOrderStatus handles PATCH /orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.UpdateOrderStatus(c.Request.Context(), actorFromContext(c), id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update order status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    o,
	})
}

// UpdatePaymentStatus handles PATCH /orders/:id/payment
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	var req order.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), actorFromContext(c), id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update payment status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment status updated successfully",
		"data":    o,
	})
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	// The reason is optional, so an empty body is fine
	var req order.CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	o, err := h.orderService.CancelOrder(c.Request.Context(), actorFromContext(c), id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to cancel order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"data":    o,
	})
}
