// internal/worker/consumer.go
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/domain/order"
	"github.com/your-org/hardware-admin/internal/pkg/email"
	"github.com/your-org/hardware-admin/internal/pkg/pdf"
	"github.com/your-org/hardware-admin/internal/queue"
)

// InvoiceSource builds invoice data for an order
type InvoiceSource interface {
	GetInvoiceData(actor order.Actor, orderID uint) (*pdf.InvoiceData, error)
}

// Renderer renders the invoice PDF attached to the email
type Renderer interface {
	GenerateInvoice(data *pdf.InvoiceData) (*bytes.Buffer, error)
}

// Mailer sends the emails produced by background tasks
type Mailer interface {
	SendInvoiceEmail(ctx context.Context, to string, data email.InvoiceEmailData, pdf []byte) error
	SendLowStockAlert(ctx context.Context, data email.LowStockAlertData) error
}

// Consumer handles queued tasks
type Consumer struct {
	invoices InvoiceSource
	renderer Renderer
	mailer   Mailer
	logger   *logrus.Logger
}

// NewConsumer creates a task consumer
func NewConsumer(invoices InvoiceSource, renderer Renderer, mailer Mailer, logger *logrus.Logger) *Consumer {
	return &Consumer{
		invoices: invoices,
		renderer: renderer,
		mailer:   mailer,
		logger:   logger,
	}
}

// Register registers the task handlers
func (c *Consumer) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TaskInvoiceEmail, c.handleInvoiceEmail)
	mux.HandleFunc(queue.TaskLowStockAlert, c.handleLowStockAlert)
}

func (c *Consumer) handleInvoiceEmail(ctx context.Context, task *asynq.Task) error {
	var payload queue.InvoiceEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		c.logger.WithError(err).Warn("Invalid invoice email payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.OrderID == 0 {
		c.logger.Debug("Skipping invoice email without order")
		return nil
	}

	// Tasks run with system rights.
	data, err := c.invoices.GetInvoiceData(order.Actor{}, payload.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			c.logger.WithField("order_id", payload.OrderID).Warn("Invoice email for unknown order dropped")
			return nil
		}
		return err
	}

	recipient := strings.TrimSpace(payload.Email)
	if recipient == "" {
		recipient = strings.TrimSpace(data.Customer.Email)
	}
	if recipient == "" {
		c.logger.WithField("order_id", payload.OrderID).Debug("Skipping invoice email without recipient")
		return nil
	}

	var attachment []byte
	if document, err := c.renderer.GenerateInvoice(data); err != nil {
		c.logger.WithError(err).WithField("order_id", payload.OrderID).Warn("Sending invoice email without PDF")
	} else {
		attachment = document.Bytes()
	}

	customerName := data.Customer.Name
	if data.Customer.Company != "" {
		customerName = data.Customer.Company
	}

	return c.mailer.SendInvoiceEmail(ctx, recipient, email.InvoiceEmailData{
		CustomerName:  customerName,
		InvoiceNumber: data.InvoiceNumber,
		OrderNumber:   data.OrderNumber,
		InvoiceDate:   data.InvoiceDate,
		DueDate:       data.DueDate,
		Total:         data.Total.String(),
		Currency:      data.Currency,
	}, attachment)
}

func (c *Consumer) handleLowStockAlert(ctx context.Context, task *asynq.Task) error {
	var payload queue.LowStockAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		c.logger.WithError(err).Warn("Invalid low stock alert payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	c.logger.WithFields(logrus.Fields{
		"sku":           payload.SKU,
		"alert_type":    payload.AlertType,
		"quantity":      payload.Quantity,
		"reorder_level": payload.ReorderLevel,
	}).Warn("Stock alert raised")

	return c.mailer.SendLowStockAlert(ctx, email.LowStockAlertData{
		SKU:          payload.SKU,
		AlertType:    payload.AlertType,
		Quantity:     payload.Quantity,
		ReorderLevel: payload.ReorderLevel,
		Message:      payload.Message,
	})
}
