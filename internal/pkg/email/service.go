// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/config"
)

// sendFunc delivers a built message. It matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService handles all email operations
type EmailService struct {
	config    *config.Config
	templates map[string]*template.Template
	logger    *logrus.Logger
	send      sendFunc
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, logger *logrus.Logger) *EmailService {
	service := &EmailService{
		config:    cfg,
		templates: make(map[string]*template.Template),
		logger:    logger,
	}
	service.send = service.deliverSMTP
	service.loadTemplates()
	return service
}

// Enabled reports whether emails are actually sent
func (s *EmailService) Enabled() bool {
	return s.config.Email.Enabled
}

// SendEmail sends an email over SMTP. With email disabled the message is
// logged and dropped.
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	if !s.Enabled() {
		s.logger.WithFields(logrus.Fields{
			"to":      email.To,
			"subject": email.Subject,
			"type":    email.Type,
		}).Info("Email disabled, message dropped")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.sendSMTPEmail(email); err != nil {
		s.logger.WithError(err).WithField("type", email.Type).Error("Failed to send email")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"to":   email.To,
		"type": email.Type,
	}).Info("Email sent")
	return nil
}

// SendInvoiceEmail sends an invoice with its PDF attached
func (s *EmailService) SendInvoiceEmail(ctx context.Context, to string, data InvoiceEmailData, pdf []byte) error {
	data.EmailTemplateData = s.baseTemplateData()

	htmlContent, err := s.renderTemplate("invoice", data)
	if err != nil {
		return fmt.Errorf("failed to render invoice template: %w", err)
	}

	email := &Email{
		To:          []string{to},
		Subject:     fmt.Sprintf("Invoice %s from %s", data.InvoiceNumber, data.CompanyName),
		HTMLContent: htmlContent,
		Type:        EmailTypeInvoice,
	}
	if len(pdf) > 0 {
		email.Attachments = append(email.Attachments, Attachment{
			Filename:    data.InvoiceNumber + ".pdf",
			ContentType: "application/pdf",
			Content:     pdf,
		})
	}

	return s.SendEmail(ctx, email)
}

// SendLowStockAlert notifies the configured alert address about a stock alert
func (s *EmailService) SendLowStockAlert(ctx context.Context, data LowStockAlertData) error {
	if s.config.Email.AlertEmail == "" {
		s.logger.WithField("sku", data.SKU).Debug("No alert email configured, skipping low stock alert")
		return nil
	}
	data.EmailTemplateData = s.baseTemplateData()

	htmlContent, err := s.renderTemplate("low_stock_alert", data)
	if err != nil {
		return fmt.Errorf("failed to render low stock template: %w", err)
	}

	subject := fmt.Sprintf("Low stock: %s", data.SKU)
	if data.AlertType == "out_of_stock" {
		subject = fmt.Sprintf("Out of stock: %s", data.SKU)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{s.config.Email.AlertEmail},
		Subject:     subject,
		HTMLContent: htmlContent,
		Type:        EmailTypeLowStockAlert,
	})
}

func (s *EmailService) baseTemplateData() EmailTemplateData {
	return GetBaseTemplateData(
		s.config.App.CompanyName,
		s.config.App.CompanyEmail,
		s.config.App.CompanyPhone,
	)
}

// loadTemplates parses the built-in email templates
func (s *EmailService) loadTemplates() {
	for name, body := range builtinTemplates {
		s.templates[name] = template.Must(template.New(name).Parse(body))
	}
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(templateName string, data interface{}) (string, error) {
	tmpl, exists := s.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

var builtinTemplates = map[string]string{
	"invoice": `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Invoice {{.InvoiceNumber}}</title></head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.CompanyName}}</h1>
        <p>Dear {{.CustomerName}},</p>
        <p>Please find attached invoice <strong>{{.InvoiceNumber}}</strong> for order {{.OrderNumber}} dated {{.InvoiceDate}}.</p>
        <p>Amount due: <strong>{{.Currency}} {{.Total}}</strong>, payable by {{.DueDate}}.</p>
        <p>If you have any questions, please contact us at {{.CompanyEmail}}{{if .CompanyPhone}} or {{.CompanyPhone}}{{end}}.</p>
        <p>Best regards,<br>{{.CompanyName}}</p>
        <hr>
        <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.CompanyName}}</p>
    </div>
</body>
</html>`,
	"low_stock_alert": `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Stock alert {{.SKU}}</title></head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px;">
    <h2 style="color: #b91c1c;">Stock alert: {{.SKU}}</h2>
    <p>{{.Message}}</p>
    <table>
        <tr><td>On hand:</td><td><strong>{{.Quantity}}</strong></td></tr>
        <tr><td>Reorder level:</td><td>{{.ReorderLevel}}</td></tr>
    </table>
    <p style="font-size: 12px; color: #666;">{{.CompanyName}} stock monitor</p>
</body>
</html>`,
}
