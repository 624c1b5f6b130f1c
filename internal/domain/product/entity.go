// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/your-org/hardware-admin/internal/pkg/money"
	"gorm.io/gorm"
)

// Product represents a catalog product. Prices live on its pack sizes.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SKU         string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Image       string         `gorm:"size:500" json:"image"`
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	SupplierID  *uint          `gorm:"index" json:"supplier_id"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category  Category   `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	PackSizes []PackSize `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"pack_sizes"`
}

// PackSize is a sellable variant of a product, e.g. "500g" or "2.5L"
type PackSize struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	ProductID uint        `gorm:"not null;uniqueIndex:idx_pack_sizes_product_label" json:"product_id"`
	Label     string      `gorm:"not null;size:50;uniqueIndex:idx_pack_sizes_product_label" json:"label"`
	SKU       string      `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Price     money.Money `gorm:"type:decimal(12,2);not null" json:"price"`
	IsActive  bool        `gorm:"default:true" json:"is_active"`
	SortOrder int         `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (PackSize) TableName() string { return "pack_sizes" }
func (Category) TableName() string { return "categories" }

// FindPackSize returns the pack size with the given label
func (p *Product) FindPackSize(label string) (*PackSize, bool) {
	for i := range p.PackSizes {
		if p.PackSizes[i].Label == label {
			return &p.PackSizes[i], true
		}
	}
	return nil, false
}

// PriceRange returns the lowest and highest active pack size price
func (p *Product) PriceRange() (money.Money, money.Money) {
	low, high := money.Zero, money.Zero
	first := true
	for _, ps := range p.PackSizes {
		if !ps.IsActive {
			continue
		}
		if first || ps.Price.LessThan(low.Decimal) {
			low = ps.Price
		}
		if first || ps.Price.GreaterThan(high.Decimal) {
			high = ps.Price
		}
		first = false
	}
	return low, high
}
