// internal/queue/tasks.go
package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// TaskInvoiceEmail sends the invoice of an order to its customer
	TaskInvoiceEmail = "order:invoice_email"
	// TaskLowStockAlert notifies staff that a pack size reached its reorder level
	TaskLowStockAlert = "stock:low_stock_alert"
)

// InvoiceEmailPayload is the payload of TaskInvoiceEmail
type InvoiceEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Email   string `json:"email,omitempty"` // overrides the customer's address when set
}

// LowStockAlertPayload is the payload of TaskLowStockAlert
type LowStockAlertPayload struct {
	AlertID      uint   `json:"alert_id"`
	StockItemID  uint   `json:"stock_item_id"`
	SKU          string `json:"sku"`
	AlertType    string `json:"alert_type"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
	Message      string `json:"message"`
}

// NewInvoiceEmailTask creates an invoice email task
func NewInvoiceEmailTask(payload InvoiceEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceEmail, body), nil
}

// NewLowStockAlertTask creates a low stock alert task
func NewLowStockAlertTask(payload LowStockAlertPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockAlert, body), nil
}
