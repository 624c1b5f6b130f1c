// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/your-org/hardware-admin/internal/domain/inventory"
	"github.com/your-org/hardware-admin/internal/pkg/money"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order is a bill issued to a customer by a representative
type Order struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	OrderNumber      string        `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	CustomerID       uint          `gorm:"not null;index" json:"customer_id"`
	RepresentativeID uint          `gorm:"not null;index" json:"representative_id"`
	Status           OrderStatus   `gorm:"not null;size:20;default:'pending';index" json:"status"`
	PaymentStatus    PaymentStatus `gorm:"not null;size:20;default:'unpaid'" json:"payment_status"`

	// Financial Information
	Subtotal money.Money `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Tax      money.Money `gorm:"type:decimal(12,2);not null" json:"tax"`
	Discount money.Money `gorm:"type:decimal(12,2);not null" json:"discount"`
	Total    money.Money `gorm:"type:decimal(12,2);not null" json:"total"`
	Currency string      `gorm:"size:3;default:'USD'" json:"currency"`

	Notes string `gorm:"type:text" json:"notes"`

	// Timestamps
	ProcessedAt *time.Time     `json:"processed_at"`
	ShippedAt   *time.Time     `json:"shipped_at"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	CancelledAt *time.Time     `json:"cancelled_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is a cart line frozen into an order
type OrderItem struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"not null;index" json:"order_id"`
	ProductID  uint        `gorm:"not null;index" json:"product_id"`
	PackSizeID uint        `gorm:"not null;index" json:"pack_size_id"`
	SKU        string      `gorm:"not null;size:100" json:"sku"`
	Name       string      `gorm:"not null;size:255" json:"name"`
	PackSize   string      `gorm:"not null;size:50" json:"pack_size"`
	Quantity   int         `gorm:"not null" json:"quantity"`
	UnitPrice  money.Money `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal  money.Money `gorm:"type:decimal(12,2);not null" json:"line_total"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"not null;size:20" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedBy uint        `gorm:"index" json:"created_by"` // User ID who made the change
	CreatedAt time.Time   `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// GenerateOrderNumber formats the order number from the creation date and ID
func (o *Order) GenerateOrderNumber() string {
	// Format: ORD-YYYYMMDD-XXXXX
	return fmt.Sprintf("ORD-%s-%05d", o.CreatedAt.Format("20060102"), o.ID)
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return CanTransition(o.Status, OrderStatusCancelled)
}

// IsCompleted checks if order is completed
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusDelivered
}

// ItemCount returns the number of units on the order
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// StockLines returns the stock taken by the order's items
func (o *Order) StockLines() []inventory.StockLine {
	lines := make([]inventory.StockLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, inventory.StockLine{
			PackSizeID: item.PackSizeID,
			SKU:        item.SKU,
			Quantity:   item.Quantity,
		})
	}
	return lines
}

// AddStatusHistory adds a new status change to history
func (o *Order) AddStatusHistory(status OrderStatus, comment string, createdBy uint) {
	history := OrderStatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Comment:   comment,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	o.StatusHistory = append(o.StatusHistory, history)
}
