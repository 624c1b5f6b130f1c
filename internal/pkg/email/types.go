// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeInvoice       EmailType = "invoice"
	EmailTypeLowStockAlert EmailType = "low_stock_alert"
	EmailTypeTest          EmailType = "test"
)

// Email represents an email message
type Email struct {
	To          []string     `json:"to"`
	CC          []string     `json:"cc,omitempty"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"html_content"`
	Type        EmailType    `json:"type"`
	Attachments []Attachment `json:"-"`
}

// Attachment is a file sent with an email
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	CompanyName  string `json:"company_name"`
	CompanyEmail string `json:"company_email"`
	CompanyPhone string `json:"company_phone"`
	Year         int    `json:"year"`
}

// InvoiceEmailData contains data for the invoice email
type InvoiceEmailData struct {
	EmailTemplateData
	CustomerName  string `json:"customer_name"`
	InvoiceNumber string `json:"invoice_number"`
	OrderNumber   string `json:"order_number"`
	InvoiceDate   string `json:"invoice_date"`
	DueDate       string `json:"due_date"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
}

// LowStockAlertData contains data for the low stock alert sent to staff
type LowStockAlertData struct {
	EmailTemplateData
	SKU          string `json:"sku"`
	AlertType    string `json:"alert_type"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
	Message      string `json:"message"`
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(companyName, companyEmail, companyPhone string) EmailTemplateData {
	return EmailTemplateData{
		CompanyName:  companyName,
		CompanyEmail: companyEmail,
		CompanyPhone: companyPhone,
		Year:         time.Now().Year(),
	}
}
