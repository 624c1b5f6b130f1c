// internal/domain/supplier/entity.go
package supplier

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrSupplierNotFound  = errors.New("supplier not found")
	ErrDuplicateSupplier = errors.New("supplier with this name already exists")
)

// Supplier represents a vendor the shop buys stock from
type Supplier struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255;uniqueIndex" json:"name"`
	ContactName string         `gorm:"size:255" json:"contact_name"`
	Email       string         `gorm:"size:255;index" json:"email"`
	Phone       string         `gorm:"size:50" json:"phone"`
	Address     string         `gorm:"type:text" json:"address"`
	Notes       string         `gorm:"type:text" json:"notes"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Supplier) TableName() string { return "suppliers" }
