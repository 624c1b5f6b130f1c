// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/cart"
	"github.com/your-org/hardware-admin/internal/domain/product"
	"github.com/your-org/hardware-admin/internal/pkg/pagination"
	"github.com/your-org/hardware-admin/internal/queue"
	"gorm.io/gorm"
)

// AlertPublisher hands new stock alerts to the background queue
type AlertPublisher interface {
	EnqueueLowStockAlert(payload queue.LowStockAlertPayload, opts ...asynq.Option) error
}

// Service handles inventory business logic
type Service struct {
	db        *gorm.DB
	publisher AlertPublisher
	logger    *logrus.Logger
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, publisher AlertPublisher, logger *logrus.Logger) *Service {
	return &Service{
		db:        db,
		publisher: publisher,
		logger:    logger,
	}
}

// ReceiveRequest represents an inbound delivery of one pack size
type ReceiveRequest struct {
	PackSizeID uint   `json:"pack_size_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	SupplierID *uint  `json:"supplier_id"`
	Notes      string `json:"notes"`
}

// AdjustRequest sets the on-hand quantity after a count or write-off
type AdjustRequest struct {
	PackSizeID uint           `json:"pack_size_id" binding:"required"`
	Quantity   *int           `json:"quantity" binding:"required"`
	Reason     MovementReason `json:"reason"`
	Notes      string         `json:"notes"`
}

// UpdateStockItemRequest represents stock item settings
type UpdateStockItemRequest struct {
	ReorderLevel *int    `json:"reorder_level"`
	Location     *string `json:"location"`
}

// StockListRequest represents stock list query parameters
type StockListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Search    string `form:"search"`
	ProductID uint   `form:"product_id"`
	LowStock  bool   `form:"low_stock"`
}

// StockListResponse represents a page of stock items
type StockListResponse struct {
	Items      []StockItem           `json:"items"`
	Pagination pagination.Pagination `json:"pagination"`
}

// MovementListResponse represents a page of stock movements
type MovementListResponse struct {
	Movements  []StockMovement       `json:"movements"`
	Pagination pagination.Pagination `json:"pagination"`
}

// StockLine is one pack size and quantity leaving or returning with an order
type StockLine struct {
	PackSizeID uint
	SKU        string
	Quantity   int
}

// Reference ties a movement to the document that caused it
type Reference struct {
	Type   string
	ID     uint
	UserID uint
}

// Available returns the quantity on hand of a pack size; pack sizes never received
// have none
func (s *Service) Available(ctx context.Context, packSizeID uint) (int, error) {
	var item StockItem
	err := s.db.WithContext(ctx).Where("pack_size_id = ?", packSizeID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get stock level: %w", err)
	}
	return max(item.Quantity, 0), nil
}

// GetStockItem gets the stock item of a pack size
func (s *Service) GetStockItem(packSizeID uint) (*StockItem, error) {
	var item StockItem
	if err := s.db.Where("pack_size_id = ?", packSizeID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStockItemNotFound
		}
		return nil, fmt.Errorf("failed to retrieve stock item: %w", err)
	}
	return &item, nil
}

// ListStock retrieves stock items with filtering and pagination
func (s *Service) ListStock(req *StockListRequest) (*StockListResponse, error) {
	var items []StockItem
	var total int64

	query := s.db.Model(&StockItem{})
	if req.Search != "" {
		query = query.Where("LOWER(sku) LIKE ?", "%"+strings.ToLower(req.Search)+"%")
	}
	if req.ProductID > 0 {
		query = query.Where("product_id = ?", req.ProductID)
	}
	if req.LowStock {
		query = query.Where("quantity <= reorder_level")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count stock items: %w", err)
	}
	err := query.Order("quantity ASC, sku ASC").Scopes(pagination.Paginate(req.Page, req.Limit)).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock items: %w", err)
	}

	return &StockListResponse{
		Items:      items,
		Pagination: pagination.New(req.Page, req.Limit, total),
	}, nil
}

// LowStock returns every stock item at or below its reorder level
func (s *Service) LowStock() ([]StockItem, error) {
	var items []StockItem
	err := s.db.Where("quantity <= reorder_level").Order("quantity ASC, sku ASC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock items: %w", err)
	}
	return items, nil
}

// CountLowStock returns the number of stock items at or below their reorder level
func (s *Service) CountLowStock() (int64, error) {
	var count int64
	if err := s.db.Model(&StockItem{}).Where("quantity <= reorder_level").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count low stock items: %w", err)
	}
	return count, nil
}

// Movements lists the movement history of a stock item, newest first
func (s *Service) Movements(stockItemID uint, page, limit int) (*MovementListResponse, error) {
	var movements []StockMovement
	var total int64

	query := s.db.Model(&StockMovement{}).Where("stock_item_id = ?", stockItemID)
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count movements: %w", err)
	}
	err := query.Order("id DESC").Scopes(pagination.Paginate(page, limit)).Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}

	return &MovementListResponse{
		Movements:  movements,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// Receive books an inbound delivery. The stock item is created on first receipt.
func (s *Service) Receive(ctx context.Context, userID uint, req *ReceiveRequest) (*StockMovement, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var movement *StockMovement
	var alerts []StockAlert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := getOrCreateItem(tx, req.PackSizeID)
		if err != nil {
			return err
		}

		now := time.Now()
		err = tx.Model(&StockItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"quantity":          gorm.Expr("quantity + ?", req.Quantity),
			"last_restock_date": now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}
		if err := tx.First(item, item.ID).Error; err != nil {
			return fmt.Errorf("failed to reload stock item: %w", err)
		}

		ref := Reference{Type: "purchase", UserID: userID}
		if req.SupplierID != nil {
			ref = Reference{Type: "supplier", ID: *req.SupplierID, UserID: userID}
		}
		movement, err = recordMovement(tx, item, MovementTypeInbound, ReasonPurchase, req.Quantity, item.Quantity-req.Quantity, ref, req.Notes)
		if err != nil {
			return err
		}

		alerts, err = checkAlerts(tx, item)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"pack_size_id": req.PackSizeID,
		"quantity":     req.Quantity,
		"new_quantity": movement.NewQuantity,
		"user_id":      userID,
	}).Info("Stock received")

	s.publishAlerts(alerts)
	return movement, nil
}

// Adjust sets the on-hand quantity to an absolute value, recording the difference
func (s *Service) Adjust(ctx context.Context, userID uint, req *AdjustRequest) (*StockMovement, error) {
	if req.Quantity == nil || *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidQuantity)
	}
	reason := req.Reason
	if reason == "" {
		reason = ReasonAdjustment
	}
	if !reason.valid() {
		return nil, ErrInvalidReason
	}

	var movement *StockMovement
	var alerts []StockAlert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := getOrCreateItem(tx, req.PackSizeID)
		if err != nil {
			return err
		}

		previous := item.Quantity
		if err := tx.Model(&StockItem{}).Where("id = ?", item.ID).Update("quantity", *req.Quantity).Error; err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}
		item.Quantity = *req.Quantity

		movement, err = recordMovement(tx, item, MovementTypeAdjustment, reason, *req.Quantity-previous, previous,
			Reference{Type: "adjustment", UserID: userID}, req.Notes)
		if err != nil {
			return err
		}

		alerts, err = checkAlerts(tx, item)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"pack_size_id":      req.PackSizeID,
		"previous_quantity": movement.PreviousQuantity,
		"new_quantity":      movement.NewQuantity,
		"reason":            reason,
		"user_id":           userID,
	}).Info("Stock adjusted")

	s.publishAlerts(alerts)
	return movement, nil
}

// UpdateStockItem changes the reorder level or shelf location of a stock item
func (s *Service) UpdateStockItem(stockItemID uint, req *UpdateStockItemRequest) (*StockItem, error) {
	var item StockItem
	var alerts []StockAlert
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, stockItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStockItemNotFound
			}
			return fmt.Errorf("failed to retrieve stock item: %w", err)
		}

		updates := make(map[string]interface{})
		if req.ReorderLevel != nil {
			if *req.ReorderLevel < 0 {
				return fmt.Errorf("reorder level cannot be negative")
			}
			updates["reorder_level"] = *req.ReorderLevel
			item.ReorderLevel = *req.ReorderLevel
		}
		if req.Location != nil {
			updates["location"] = *req.Location
			item.Location = *req.Location
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&StockItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update stock item: %w", err)
		}

		var err error
		alerts, err = checkAlerts(tx, &item)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishAlerts(alerts)
	return &item, nil
}

// DeductForOrder takes the lines of an order out of stock inside the caller's
// transaction. It fails with cart.ErrInsufficientStock when any line cannot be
// covered, leaving the caller to roll back. Alerts raised are returned so they can
// be published after commit.
func (s *Service) DeductForOrder(tx *gorm.DB, ref Reference, lines []StockLine) ([]StockAlert, error) {
	var alerts []StockAlert
	for _, line := range mergeLines(lines) {
		if line.Quantity < 1 {
			continue
		}

		// conditional decrement so concurrent checkouts cannot oversell
		result := tx.Model(&StockItem{}).
			Where("pack_size_id = ? AND quantity >= ?", line.PackSizeID, line.Quantity).
			Update("quantity", gorm.Expr("quantity - ?", line.Quantity))
		if result.Error != nil {
			return nil, fmt.Errorf("failed to deduct stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			available := 0
			var current StockItem
			if err := tx.Where("pack_size_id = ?", line.PackSizeID).First(&current).Error; err == nil {
				available = max(current.Quantity, 0)
			}
			return nil, fmt.Errorf("%w: %s available %d, requested %d",
				cart.ErrInsufficientStock, line.SKU, available, line.Quantity)
		}

		var item StockItem
		if err := tx.Where("pack_size_id = ?", line.PackSizeID).First(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to reload stock item: %w", err)
		}
		if _, err := recordMovement(tx, &item, MovementTypeOutbound, ReasonSale, line.Quantity, item.Quantity+line.Quantity, ref, ""); err != nil {
			return nil, err
		}

		raised, err := checkAlerts(tx, &item)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, raised...)
	}
	return alerts, nil
}

// RestoreForOrder puts the lines of a cancelled order back into stock inside the
// caller's transaction
func (s *Service) RestoreForOrder(tx *gorm.DB, ref Reference, lines []StockLine) error {
	for _, line := range mergeLines(lines) {
		if line.Quantity < 1 {
			continue
		}

		item, err := getOrCreateItem(tx, line.PackSizeID)
		if errors.Is(err, product.ErrPackSizeNotFound) {
			s.logger.WithField("pack_size_id", line.PackSizeID).Warn("Pack size gone, stock not restored")
			continue
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&StockItem{}).Where("id = ?", item.ID).
			Update("quantity", gorm.Expr("quantity + ?", line.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
		if err := tx.First(item, item.ID).Error; err != nil {
			return fmt.Errorf("failed to reload stock item: %w", err)
		}
		if _, err := recordMovement(tx, item, MovementTypeInbound, ReasonCancellation, line.Quantity, item.Quantity-line.Quantity, ref, ""); err != nil {
			return err
		}
		if _, err := checkAlerts(tx, item); err != nil {
			return err
		}
	}
	return nil
}

// ListAlerts lists stock alerts, newest first
func (s *Service) ListAlerts(includeResolved bool) ([]StockAlert, error) {
	var alerts []StockAlert
	query := s.db.Preload("StockItem").Order("id DESC")
	if !includeResolved {
		query = query.Where("is_resolved = ?", false)
	}
	if err := query.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve alerts: %w", err)
	}
	return alerts, nil
}

// ResolveAlert marks an alert as handled
func (s *Service) ResolveAlert(id uint) (*StockAlert, error) {
	var alert StockAlert
	if err := s.db.First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to retrieve alert: %w", err)
	}
	if alert.IsResolved {
		return &alert, nil
	}

	now := time.Now()
	err := s.db.Model(&StockAlert{}).Where("id = ?", alert.ID).
		Updates(map[string]interface{}{"is_resolved": true, "resolved_at": now}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}
	alert.IsResolved = true
	alert.ResolvedAt = &now
	return &alert, nil
}

// PublishAlerts queues notifications for alerts raised inside a caller's transaction
func (s *Service) PublishAlerts(alerts []StockAlert) {
	s.publishAlerts(alerts)
}

func (s *Service) publishAlerts(alerts []StockAlert) {
	if s.publisher == nil {
		return
	}
	for _, alert := range alerts {
		payload := queue.LowStockAlertPayload{
			AlertID:      alert.ID,
			StockItemID:  alert.StockItemID,
			SKU:          alert.StockItem.SKU,
			AlertType:    alert.AlertType,
			Quantity:     alert.StockItem.Quantity,
			ReorderLevel: alert.StockItem.ReorderLevel,
			Message:      alert.Message,
		}
		if err := s.publisher.EnqueueLowStockAlert(payload); err != nil {
			s.logger.WithError(err).WithField("alert_id", alert.ID).Warn("Failed to enqueue low stock alert")
		}
	}
}

// getOrCreateItem loads the stock item of a pack size, creating an empty one when
// the pack size has never been stocked
func getOrCreateItem(tx *gorm.DB, packSizeID uint) (*StockItem, error) {
	var item StockItem
	err := tx.Where("pack_size_id = ?", packSizeID).First(&item).Error
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check stock item: %w", err)
	}

	var packSize product.PackSize
	if err := tx.First(&packSize, packSizeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrPackSizeNotFound
		}
		return nil, fmt.Errorf("failed to retrieve pack size: %w", err)
	}

	item = StockItem{
		PackSizeID:   packSize.ID,
		ProductID:    packSize.ProductID,
		SKU:          packSize.SKU,
		ReorderLevel: DefaultReorderLevel,
	}
	if err := tx.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create stock item: %w", err)
	}
	return &item, nil
}

func recordMovement(tx *gorm.DB, item *StockItem, movementType MovementType, reason MovementReason,
	quantity, previous int, ref Reference, notes string) (*StockMovement, error) {
	movement := &StockMovement{
		StockItemID:      item.ID,
		MovementType:     movementType,
		Reason:           reason,
		Quantity:         quantity,
		PreviousQuantity: previous,
		NewQuantity:      item.Quantity,
		ReferenceType:    ref.Type,
		ReferenceID:      ref.ID,
		Notes:            notes,
		CreatedBy:        ref.UserID,
	}
	if err := tx.Create(movement).Error; err != nil {
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}
	return movement, nil
}

// checkAlerts keeps at most one open alert per stock item. It resolves open alerts
// once stock is back above the reorder level, escalates low stock to out of stock,
// and returns any alert that is new or changed.
func checkAlerts(tx *gorm.DB, item *StockItem) ([]StockAlert, error) {
	var open StockAlert
	err := tx.Where("stock_item_id = ? AND is_resolved = ?", item.ID, false).Order("id DESC").First(&open).Error
	hasOpen := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check alerts: %w", err)
	}

	if !item.IsLowStock() {
		if hasOpen {
			now := time.Now()
			err := tx.Model(&StockAlert{}).
				Where("stock_item_id = ? AND is_resolved = ?", item.ID, false).
				Updates(map[string]interface{}{"is_resolved": true, "resolved_at": now}).Error
			if err != nil {
				return nil, fmt.Errorf("failed to resolve alerts: %w", err)
			}
		}
		return nil, nil
	}

	alertType := AlertTypeLowStock
	message := fmt.Sprintf("%s is running low (Available: %d, Reorder Level: %d)", item.SKU, item.Quantity, item.ReorderLevel)
	if item.IsOutOfStock() {
		alertType = AlertTypeOutOfStock
		message = fmt.Sprintf("%s is out of stock", item.SKU)
	}

	if hasOpen {
		if open.AlertType == alertType {
			return nil, nil
		}
		err := tx.Model(&StockAlert{}).Where("id = ?", open.ID).
			Updates(map[string]interface{}{"alert_type": alertType, "message": message}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to update alert: %w", err)
		}
		open.AlertType = alertType
		open.Message = message
		open.StockItem = *item
		return []StockAlert{open}, nil
	}

	alert := StockAlert{
		StockItemID: item.ID,
		AlertType:   alertType,
		Message:     message,
	}
	if err := tx.Omit("StockItem").Create(&alert).Error; err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	alert.StockItem = *item
	return []StockAlert{alert}, nil
}

// mergeLines sums quantities per pack size, keeping first-seen order
func mergeLines(lines []StockLine) []StockLine {
	index := make(map[uint]int, len(lines))
	merged := make([]StockLine, 0, len(lines))
	for _, line := range lines {
		if i, ok := index[line.PackSizeID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.PackSizeID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}
