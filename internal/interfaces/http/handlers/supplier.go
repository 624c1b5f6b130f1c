// internal/interfaces/http/handlers/supplier.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/supplier"
	"github.com/your-org/hardware-admin/internal/pkg/pagination"
)

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	supplierService *supplier.Service
	logger          *logrus.Logger
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(supplierService *supplier.Service, logger *logrus.Logger) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
		logger:          logger,
	}
}

// GetSuppliers handles GET /suppliers
func (h *SupplierHandler) GetSuppliers(c *gin.Context) {
	var req supplier.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}
	req.Page, req.Limit = pagination.Normalize(req.Page, req.Limit)

	response, err := h.supplierService.List(&req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve suppliers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Suppliers retrieved successfully",
		"data":    response,
	})
}

// GetSupplier handles GET /suppliers/:id
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "supplier")
	if !ok {
		return
	}

	s, err := h.supplierService.Get(id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve supplier")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier retrieved successfully",
		"data":    s,
	})
}

// CreateSupplier handles POST /suppliers
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req supplier.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	s, err := h.supplierService.Create(&req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create supplier")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Supplier created successfully",
		"data":    s,
	})
}

// UpdateSupplier handles PUT /suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "supplier")
	if !ok {
		return
	}

	var req supplier.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	s, err := h.supplierService.Update(id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update supplier")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier updated successfully",
		"data":    s,
	})
}

// DeleteSupplier handles DELETE /suppliers/:id
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "supplier")
	if !ok {
		return
	}

	if err := h.supplierService.Delete(id); err != nil {
		respondError(c, h.logger, err, "Failed to delete supplier")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier deleted successfully",
	})
}
