// internal/domain/invoice/service.go
package invoice

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/domain/customer"
	"github.com/your-org/hardware-admin/internal/domain/order"
	"github.com/your-org/hardware-admin/internal/domain/user"
	"github.com/your-org/hardware-admin/internal/pkg/pdf"
	"github.com/your-org/hardware-admin/internal/queue"
)

const dateLayout = "Jan 2, 2006"

var (
	ErrNoRecipient    = errors.New("customer has no email address")
	ErrOrderCancelled = errors.New("cannot email the invoice of a cancelled order")
)

// OrderFinder loads the order an invoice is issued for
type OrderFinder interface {
	GetOrder(actor order.Actor, id uint) (*order.Order, error)
}

// CustomerFinder loads the billed customer, including deactivated ones
type CustomerFinder interface {
	Get(id uint) (*customer.Customer, error)
}

// StaffFinder resolves the representative named on the invoice
type StaffFinder interface {
	GetUser(userID uint) (*user.User, error)
}

// Renderer turns invoice data into a PDF document
type Renderer interface {
	GenerateInvoice(data *pdf.InvoiceData) (*bytes.Buffer, error)
}

// EmailQueue schedules invoice emails
type EmailQueue interface {
	EnqueueInvoiceEmail(payload queue.InvoiceEmailPayload, opts ...asynq.Option) error
}

// Service builds invoices from orders
type Service struct {
	config    *config.Config
	orders    OrderFinder
	customers CustomerFinder
	staff     StaffFinder
	renderer  Renderer
	emails    EmailQueue
	logger    *logrus.Logger
}

// NewService creates a new invoice service
func NewService(cfg *config.Config, orders OrderFinder, customers CustomerFinder, staff StaffFinder,
	renderer Renderer, emails EmailQueue, logger *logrus.Logger) *Service {
	return &Service{
		config:    cfg,
		orders:    orders,
		customers: customers,
		staff:     staff,
		renderer:  renderer,
		emails:    emails,
		logger:    logger,
	}
}

// Document is a rendered invoice
type Document struct {
	Filename string
	Content  *bytes.Buffer
}

// EmailRequest optionally overrides the recipient
type EmailRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}

// GetInvoiceData builds the invoice of an order visible to the actor
func (s *Service) GetInvoiceData(actor order.Actor, orderID uint) (*pdf.InvoiceData, error) {
	o, err := s.orders.GetOrder(actor, orderID)
	if err != nil {
		return nil, err
	}

	c, err := s.customers.Get(o.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice customer: %w", err)
	}

	data := &pdf.InvoiceData{
		InvoiceNumber: InvoiceNumber(o),
		InvoiceDate:   o.CreatedAt.Format(dateLayout),
		DueDate:       s.DueDate(o).Format(dateLayout),
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		OrderDate:     o.CreatedAt.Format(dateLayout),
		Status:        o.Status.Label(),
		PaymentStatus: string(o.PaymentStatus),
		Currency:      o.Currency,
		Notes:         o.Notes,
		Company: pdf.CompanyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Phone:   s.config.App.CompanyPhone,
			Email:   s.config.App.CompanyEmail,
			Website: s.config.App.CompanyWebsite,
		},
		Customer: pdf.CustomerInfo{
			Name:      c.Name,
			Company:   c.Company,
			Address:   c.Address,
			City:      c.City,
			Phone:     c.Phone,
			Email:     c.Email,
			TaxNumber: c.TaxNumber,
		},
		Items:     make([]pdf.LineItem, 0, len(o.Items)),
		ItemCount: o.ItemCount(),
		Subtotal:  o.Subtotal,
		Discount:  o.Discount,
		Tax:       o.Tax,
		Total:     o.Total,
	}

	for _, item := range o.Items {
		data.Items = append(data.Items, pdf.LineItem{
			Name:      item.Name,
			PackSize:  item.PackSize,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}

	if rep, err := s.staff.GetUser(o.RepresentativeID); err == nil {
		data.Representative = rep.GetFullName()
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}

	return data, nil
}

// GeneratePDF renders the invoice of an order as a PDF
func (s *Service) GeneratePDF(actor order.Actor, orderID uint) (*Document, error) {
	data, err := s.GetInvoiceData(actor, orderID)
	if err != nil {
		return nil, err
	}

	content, err := s.renderer.GenerateInvoice(data)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("Failed to render invoice")
		return nil, fmt.Errorf("failed to generate invoice: %w", err)
	}

	return &Document{
		Filename: data.InvoiceNumber + ".pdf",
		Content:  content,
	}, nil
}

// EmailInvoice schedules the invoice email. The customer's address is used
// unless the request names another one.
func (s *Service) EmailInvoice(actor order.Actor, orderID uint, req *EmailRequest) (string, error) {
	o, err := s.orders.GetOrder(actor, orderID)
	if err != nil {
		return "", err
	}
	if o.Status == order.OrderStatusCancelled {
		return "", ErrOrderCancelled
	}

	recipient := ""
	if req != nil {
		recipient = strings.TrimSpace(req.Email)
	}
	if recipient == "" {
		c, err := s.customers.Get(o.CustomerID)
		if err != nil {
			return "", fmt.Errorf("failed to load invoice customer: %w", err)
		}
		recipient = c.Email
	}
	if recipient == "" {
		return "", ErrNoRecipient
	}

	payload := queue.InvoiceEmailPayload{OrderID: o.ID, Email: recipient}
	if err := s.emails.EnqueueInvoiceEmail(payload); err != nil {
		return "", fmt.Errorf("failed to enqueue invoice email: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"by":       actor.UserID,
	}).Info("Invoice email scheduled")

	return recipient, nil
}

// InvoiceNumber derives the invoice number from the order number
func InvoiceNumber(o *order.Order) string {
	return "INV-" + strings.TrimPrefix(o.OrderNumber, "ORD-")
}

// DueDate returns the payment due date of an order's invoice
func (s *Service) DueDate(o *order.Order) time.Time {
	return o.CreatedAt.AddDate(0, 0, s.config.Invoice.DueDays)
}
