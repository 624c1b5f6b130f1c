// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/inventory"
	"github.com/your-org/hardware-admin/internal/interfaces/http/middleware"
	"github.com/your-org/hardware-admin/internal/pkg/pagination"
)

// InventoryHandler handles stock endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	logger           *logrus.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventory.Service, logger *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// GetStock handles GET /stock
func (h *InventoryHandler) GetStock(c *gin.Context) {
	var req inventory.StockListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}
	req.Page, req.Limit = pagination.Normalize(req.Page, req.Limit)

	response, err := h.inventoryService.ListStock(&req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve stock")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock retrieved successfully",
		"data":    response,
	})
}

// GetLowStock handles GET /stock/low
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	items, err := h.inventoryService.LowStock()
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve low stock items")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock items retrieved successfully",
		"data":    items,
	})
}

// GetPackSizeStock handles GET /stock/pack-sizes/:packSizeId
func (h *InventoryHandler) GetPackSizeStock(c *gin.Context) {
	packSizeID, ok := parseIDParam(c, "packSizeId", "pack size")
	if !ok {
		return
	}

	item, err := h.inventoryService.GetStockItem(packSizeID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve stock item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock item retrieved successfully",
		"data":    item,
	})
}

// ReceiveStock handles POST /stock/receive
func (h *InventoryHandler) ReceiveStock(c *gin.Context) {
	var req inventory.ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	movement, err := h.inventoryService.Receive(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to receive stock")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock received successfully",
		"data":    movement,
	})
}

// AdjustStock handles POST /stock/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req inventory.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	movement, err := h.inventoryService.Adjust(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to adjust stock")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock adjusted successfully",
		"data":    movement,
	})
}

// UpdateStockItem handles PUT /stock/items/:id
func (h *InventoryHandler) UpdateStockItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "stock item")
	if !ok {
		return
	}

	var req inventory.UpdateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.inventoryService.UpdateStockItem(id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update stock item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock item updated successfully",
		"data":    item,
	})
}

// GetMovements handles GET /stock/items/:id/movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "stock item")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, limit = pagination.Normalize(page, limit)

	response, err := h.inventoryService.Movements(id, page, limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve stock movements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock movements retrieved successfully",
		"data":    response,
	})
}

// GetAlerts handles GET /stock/alerts
func (h *InventoryHandler) GetAlerts(c *gin.Context) {
	includeResolved := c.Query("include_resolved") == "true"

	alerts, err := h.inventoryService.ListAlerts(includeResolved)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve stock alerts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock alerts retrieved successfully",
		"data":    alerts,
	})
}

// ResolveAlert handles POST /stock/alerts/:id/resolve
func (h *InventoryHandler) ResolveAlert(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "alert")
	if !ok {
		return
	}

	alert, err := h.inventoryService.ResolveAlert(id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to resolve stock alert")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock alert resolved successfully",
		"data":    alert,
	})
}
