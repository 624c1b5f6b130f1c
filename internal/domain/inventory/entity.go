// internal/domain/inventory/entity.go
package inventory

import (
	"errors"
	"time"
)

var (
	ErrStockItemNotFound = errors.New("stock item not found")
	ErrAlertNotFound     = errors.New("stock alert not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidReason     = errors.New("invalid movement reason")
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	MovementTypeInbound    MovementType = "inbound"    // Purchase, return, cancellation
	MovementTypeOutbound   MovementType = "outbound"   // Sale, damage
	MovementTypeAdjustment MovementType = "adjustment" // Stock count correction
)

// MovementReason represents the reason for a stock movement
type MovementReason string

const (
	ReasonPurchase     MovementReason = "purchase"
	ReasonSale         MovementReason = "sale"
	ReasonReturn       MovementReason = "return"
	ReasonDamage       MovementReason = "damage"
	ReasonAdjustment   MovementReason = "adjustment"
	ReasonCancellation MovementReason = "cancellation"
)

// Alert types
const (
	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
)

// DefaultReorderLevel is used for stock items created by a first receipt
const DefaultReorderLevel = 10

// StockItem holds the on-hand quantity of one pack size
type StockItem struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	PackSizeID      uint       `gorm:"uniqueIndex;not null" json:"pack_size_id"`
	ProductID       uint       `gorm:"not null;index" json:"product_id"`
	SKU             string     `gorm:"not null;size:100;index" json:"sku"`
	Quantity        int        `gorm:"not null;default:0" json:"quantity"`
	ReorderLevel    int        `gorm:"not null;default:10" json:"reorder_level"`
	Location        string     `gorm:"size:100" json:"location"` // Aisle/Shelf location
	LastRestockDate *time.Time `json:"last_restock_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StockMovement represents a record of stock movement
type StockMovement struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	StockItemID      uint           `gorm:"not null;index" json:"stock_item_id"`
	MovementType     MovementType   `gorm:"not null;size:20" json:"movement_type"`
	Reason           MovementReason `gorm:"not null;size:20" json:"reason"`
	Quantity         int            `gorm:"not null" json:"quantity"`
	PreviousQuantity int            `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int            `gorm:"not null" json:"new_quantity"`
	ReferenceType    string         `gorm:"size:50" json:"reference_type"` // "order", "supplier"
	ReferenceID      uint           `json:"reference_id"`
	Notes            string         `gorm:"type:text" json:"notes"`
	CreatedBy        uint           `gorm:"index" json:"created_by"`
	CreatedAt        time.Time      `json:"created_at"`
}

// StockAlert represents low stock alerts
type StockAlert struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StockItemID uint       `gorm:"not null;index" json:"stock_item_id"`
	AlertType   string     `gorm:"not null;size:20" json:"alert_type"`
	Message     string     `gorm:"type:text" json:"message"`
	IsResolved  bool       `gorm:"default:false;index" json:"is_resolved"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	StockItem StockItem `gorm:"foreignKey:StockItemID" json:"stock_item,omitempty"`
}

// TableName overrides
func (StockItem) TableName() string     { return "stock_items" }
func (StockMovement) TableName() string { return "stock_movements" }
func (StockAlert) TableName() string    { return "stock_alerts" }

// IsLowStock checks if stock is at or below the reorder level
func (si *StockItem) IsLowStock() bool {
	return si.Quantity <= si.ReorderLevel
}

// IsOutOfStock checks if stock is exhausted
func (si *StockItem) IsOutOfStock() bool {
	return si.Quantity <= 0
}

// CanFulfill checks if there's enough stock for a quantity
func (si *StockItem) CanFulfill(quantity int) bool {
	return si.Quantity >= quantity
}

func (r MovementReason) valid() bool {
	switch r {
	case ReasonPurchase, ReasonSale, ReasonReturn, ReasonDamage, ReasonAdjustment, ReasonCancellation:
		return true
	}
	return false
}
