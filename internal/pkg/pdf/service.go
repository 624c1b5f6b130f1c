// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/pkg/money"
)

// Service handles PDF generation
type Service struct {
	dpi      uint
	template *template.Template
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	dpi := cfg.Invoice.DPI
	if dpi == 0 {
		dpi = 300
	}
	return &Service{
		dpi:      dpi,
		template: template.Must(template.New("invoice").Parse(invoiceTemplate)),
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber  string       `json:"invoice_number"`
	InvoiceDate    string       `json:"invoice_date"`
	DueDate        string       `json:"due_date"`
	OrderID        uint         `json:"order_id"`
	OrderNumber    string       `json:"order_number"`
	OrderDate      string       `json:"order_date"`
	Status         string       `json:"status"`
	PaymentStatus  string       `json:"payment_status"`
	Currency       string       `json:"currency"`
	Representative string       `json:"representative"`
	Notes          string       `json:"notes,omitempty"`
	Company        CompanyInfo  `json:"company"`
	Customer       CustomerInfo `json:"customer"`
	Items          []LineItem   `json:"items"`
	ItemCount      int          `json:"item_count"`
	Subtotal       money.Money  `json:"subtotal"`
	Discount       money.Money  `json:"discount"`
	Tax            money.Money  `json:"tax"`
	Total          money.Money  `json:"total"`
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// CustomerInfo is the bill-to block
type CustomerInfo struct {
	Name      string `json:"name"`
	Company   string `json:"company,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	TaxNumber string `json:"tax_number,omitempty"`
}

// LineItem is one row of the items table
type LineItem struct {
	Name      string      `json:"name"`
	PackSize  string      `json:"pack_size"`
	SKU       string      `json:"sku"`
	Quantity  int         `json:"quantity"`
	UnitPrice money.Money `json:"unit_price"`
	LineTotal money.Money `json:"line_total"`
}

// GenerateInvoice renders the invoice to PDF. It needs the wkhtmltopdf binary on
// the PATH or in WKHTMLTOPDF_PATH.
func (s *Service) GenerateInvoice(data *InvoiceData) (*bytes.Buffer, error) {
	// Generate HTML from template
	htmlContent, err := s.RenderHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	// Convert HTML to PDF
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	// Set PDF options
	pdfg.Dpi.Set(s.dpi)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Title.Set("Invoice " + data.InvoiceNumber)

	// Add page from HTML content
	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]/[toPage]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML renders the print layout of the invoice
func (s *Service) RenderHTML(data *InvoiceData) (string, error) {
	var buf bytes.Buffer
	if err := s.template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Invoice HTML template
const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .company-info {
            flex: 1;
        }
        .invoice-info {
            text-align: right;
            flex: 1;
        }
        .invoice-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .invoice-details {
            margin-bottom: 30px;
        }
        .invoice-details table {
            width: 100%;
        }
        .invoice-details td {
            padding: 5px 0;
            vertical-align: top;
        }
        .invoice-details .label {
            font-weight: bold;
            width: 150px;
        }
        .section-title {
            font-size: 16px;
            font-weight: bold;
            margin-bottom: 10px;
            color: #374151;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col,
        .items-table .price-col,
        .items-table .total-col {
            text-align: right;
            width: 80px;
        }
        .totals {
            float: right;
            width: 300px;
        }
        .totals table {
            width: 100%;
            border-collapse: collapse;
        }
        .totals td {
            padding: 8px;
            border-bottom: 1px solid #eee;
        }
        .totals .label {
            text-align: right;
            font-weight: bold;
        }
        .totals .amount {
            text-align: right;
            width: 100px;
        }
        .total-row {
            font-size: 18px;
            font-weight: bold;
            border-top: 2px solid #333 !important;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
        .status-badge {
            display: inline-block;
            padding: 4px 8px;
            border-radius: 4px;
            font-size: 12px;
            font-weight: bold;
            text-transform: uppercase;
        }
        .status-paid {
            background-color: #dcfce7;
            color: #166534;
        }
        .status-pending {
            background-color: #fef3c7;
            color: #92400e;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            {{if .Company.Address}}<p>{{.Company.Address}}</p>{{end}}
            {{if .Company.Phone}}<p>Phone: {{.Company.Phone}}</p>{{end}}
            <p>Email: {{.Company.Email}}</p>
            {{if .Company.Website}}<p>{{.Company.Website}}</p>{{end}}
        </div>
        <div class="invoice-info">
            <div class="invoice-title">INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Due Date:</strong> {{.DueDate}}</p>
            <p><strong>Order #:</strong> {{.OrderNumber}}</p>
        </div>
    </div>

    <div class="invoice-details">
        <table>
            <tr>
                <td class="label">Order Date:</td>
                <td>{{.OrderDate}}</td>
                <td class="label" style="text-align: right;">Payment Status:</td>
                <td style="text-align: right;">
                    <span class="status-badge {{if eq .PaymentStatus "paid"}}status-paid{{else}}status-pending{{end}}">
                        {{.PaymentStatus}}
                    </span>
                </td>
            </tr>
            <tr>
                <td class="label">Order Status:</td>
                <td>{{.Status}}</td>
                <td class="label" style="text-align: right;">Currency:</td>
                <td style="text-align: right;">{{.Currency}}</td>
            </tr>
            {{if .Representative}}
            <tr>
                <td class="label">Sales Rep:</td>
                <td>{{.Representative}}</td>
            </tr>
            {{end}}
        </table>
    </div>

    <div class="invoice-details">
        <div class="section-title">Bill To:</div>
        <p><strong>{{.Customer.Name}}</strong></p>
        {{if .Customer.Company}}<p>{{.Customer.Company}}</p>{{end}}
        {{if .Customer.Address}}<p>{{.Customer.Address}}</p>{{end}}
        {{if .Customer.City}}<p>{{.Customer.City}}</p>{{end}}
        {{if .Customer.Phone}}<p>Phone: {{.Customer.Phone}}</p>{{end}}
        {{if .Customer.Email}}<p>Email: {{.Customer.Email}}</p>{{end}}
        {{if .Customer.TaxNumber}}<p>Tax No: {{.Customer.TaxNumber}}</p>{{end}}
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th>Pack Size</th>
                <th>SKU</th>
                <th class="qty-col">Qty</th>
                <th class="price-col">Unit Price</th>
                <th class="total-col">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Items}}
            <tr>
                <td><strong>{{.Name}}</strong></td>
                <td>{{.PackSize}}</td>
                <td>{{.SKU}}</td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">{{.UnitPrice}}</td>
                <td class="total-col">{{.LineTotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td class="label">Subtotal ({{.ItemCount}} items):</td>
                <td class="amount">{{.Subtotal}}</td>
            </tr>
            {{if .Discount.IsPositive}}
            <tr>
                <td class="label">Discount:</td>
                <td class="amount">-{{.Discount}}</td>
            </tr>
            {{end}}
            <tr>
                <td class="label">Tax:</td>
                <td class="amount">{{.Tax}}</td>
            </tr>
            <tr class="total-row">
                <td class="label">Total:</td>
                <td class="amount">{{.Currency}} {{.Total}}</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    {{if .Notes}}<p><strong>Notes:</strong> {{.Notes}}</p>{{end}}

    <div class="footer">
        <p>Thank you for your business!</p>
        <p>If you have any questions about this invoice, please contact us at {{.Company.Email}}{{if .Company.Phone}} or {{.Company.Phone}}{{end}}</p>
    </div>
</body>
</html>
`
