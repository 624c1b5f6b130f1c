// internal/interfaces/http/handlers/customer.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/customer"
	"github.com/your-org/hardware-admin/internal/interfaces/http/middleware"
	"github.com/your-org/hardware-admin/internal/pkg/pagination"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	customerService *customer.Service
	logger          *logrus.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *customer.Service, logger *logrus.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// CustomerStatusRequest represents a customer activation change
type CustomerStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// GetCustomers handles GET /customers
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	var req customer.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}
	req.Page, req.Limit = pagination.Normalize(req.Page, req.Limit)

	response, err := h.customerService.List(&req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customers retrieved successfully",
		"data":    response,
	})
}

// GetCustomer handles GET /customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}

	cust, err := h.customerService.Get(id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer retrieved successfully",
		"data":    cust,
	})
}

// CreateCustomer handles POST /customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req customer.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	cust, err := h.customerService.Create(userID, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Customer created successfully",
		"data":    cust,
	})
}

// UpdateCustomer handles PUT /customers/:id
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}

	var req customer.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cust, err := h.customerService.Update(id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer updated successfully",
		"data":    cust,
	})
}

// UpdateCustomerStatus handles PATCH /customers/:id/status
func (h *CustomerHandler) UpdateCustomerStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "customer")
	if !ok {
		return
	}

	var req CustomerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cust, err := h.customerService.SetActive(id, *req.IsActive)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update customer status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Customer status updated successfully",
		"data":    cust,
	})
}
