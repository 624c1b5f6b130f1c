// internal/domain/customer/entity.go
package customer

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerInactive = errors.New("customer is inactive")
	ErrDuplicateEmail   = errors.New("customer with this email already exists")
)

// Customer represents a trade or walk-in customer that bills are issued to
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255;index" json:"name"`
	Company   string         `gorm:"size:255" json:"company"`
	Email     string         `gorm:"size:255;index" json:"email"`
	Phone     string         `gorm:"size:50;index" json:"phone"`
	Address   string         `gorm:"type:text" json:"address"`
	City      string         `gorm:"size:100" json:"city"`
	TaxNumber string         `gorm:"size:50" json:"tax_number"`
	Notes     string         `gorm:"type:text" json:"notes"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedBy uint           `gorm:"index" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Customer) TableName() string { return "customers" }

// DisplayName returns the company when set, otherwise the contact name
func (c *Customer) DisplayName() string {
	if c.Company != "" {
		return c.Company
	}
	return c.Name
}
