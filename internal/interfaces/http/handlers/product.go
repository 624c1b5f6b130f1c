// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/product"
	"github.com/your-org/hardware-admin/internal/interfaces/http/middleware"
	"github.com/your-org/hardware-admin/internal/pkg/pagination"
)

// ProductHandler handles product and pack size endpoints
type ProductHandler struct {
	productService *product.Service
	logger         *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *product.Service, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ProductListRequest

	// Bind query parameters
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}
	req.Page, req.Limit = pagination.Normalize(req.Page, req.Limit)

	// Representatives only sell what is active
	if !middleware.IsAdminFromContext(c) {
		isActive := true
		req.IsActive = &isActive
	}

	response, err := h.productService.GetProducts(&req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    response,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	p, err := h.productService.GetProduct(id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve product")
		return
	}

	if !p.IsActive && !middleware.IsAdminFromContext(c) {
		respondError(c, h.logger, product.ErrProductNotFound, "Failed to retrieve product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    p,
	})
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req product.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.CreateProduct(&req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    p,
	})
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	var req product.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.UpdateProduct(id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"data":    p,
	})
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		respondError(c, h.logger, err, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// AddPackSize handles POST /products/:id/pack-sizes
func (h *ProductHandler) AddPackSize(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	var req product.PackSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	packSize, err := h.productService.AddPackSize(id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add pack size")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Pack size added successfully",
		"data":    packSize,
	})
}

// UpdatePackSize handles PUT /products/:id/pack-sizes/:packSizeId
func (h *ProductHandler) UpdatePackSize(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}
	packSizeID, ok := parseIDParam(c, "packSizeId", "pack size")
	if !ok {
		return
	}

	var req product.PackSizeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	packSize, err := h.productService.UpdatePackSize(id, packSizeID, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update pack size")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Pack size updated successfully",
		"data":    packSize,
	})
}

// RemovePackSize handles DELETE /products/:id/pack-sizes/:packSizeId
func (h *ProductHandler) RemovePackSize(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}
	packSizeID, ok := parseIDParam(c, "packSizeId", "pack size")
	if !ok {
		return
	}

	if err := h.productService.RemovePackSize(id, packSizeID); err != nil {
		respondError(c, h.logger, err, "Failed to remove pack size")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Pack size removed successfully",
	})
}
