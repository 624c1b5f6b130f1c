// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/hardware-admin/internal/pkg/money"
)

// Candidate is a purchasable entry offered to the cart. Values are trusted as given;
// validation happens before Add is called.
type Candidate struct {
	ProductID   uint
	PackSizeID  uint
	ProductName string
	PackSize    string
	Quantity    int
	UnitPrice   money.Money
	Image       string
}

// Line is a single entry in the cart. Quantity and unit price are the only inputs
// of the line total; the total itself is never stored.
type Line struct {
	ID          string      `json:"line_id"`
	ProductID   uint        `json:"product_id"`
	PackSizeID  uint        `json:"pack_size_id"`
	ProductName string      `json:"product_name"`
	PackSize    string      `json:"pack_size"`
	Image       string      `json:"image,omitempty"`
	Quantity    int         `json:"quantity"`
	UnitPrice   money.Money `json:"unit_price"`
	AddedAt     time.Time   `json:"added_at"`
}

// LineTotal returns quantity * unit price
func (l Line) LineTotal() money.Money {
	return l.UnitPrice.Times(l.Quantity)
}

// withQuantity returns a copy of the line holding a new quantity. Every other
// field, the unit price included, is carried over unchanged.
func (l Line) withQuantity(quantity int) Line {
	l.Quantity = quantity
	return l
}

func (l Line) matches(productID uint, packSize string) bool {
	return l.ProductID == productID && l.PackSize == packSize
}

// LineView is a line as exposed to readers, with its derived total
type LineView struct {
	Line
	LineTotal money.Money `json:"line_total"`
}

// Snapshot is a read-only copy of the cart contents and aggregates
type Snapshot struct {
	Items []LineView  `json:"items"`
	Count int         `json:"count"`
	Total money.Money `json:"total"`
}

// IsEmpty reports whether the snapshot has no lines
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}
