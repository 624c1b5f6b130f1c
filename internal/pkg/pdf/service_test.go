package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/pkg/money"
)

func sampleInvoice() *InvoiceData {
	return &InvoiceData{
		InvoiceNumber: "INV-20261018-00001",
		InvoiceDate:   "Oct 18, 2026",
		DueDate:       "Nov 17, 2026",
		OrderNumber:   "ORD-20261018-00001",
		Status:        "pending",
		PaymentStatus: "unpaid",
		Currency:      "USD",
		Company:       CompanyInfo{Name: "Hardware Store", Email: "billing@example.com"},
		Customer:      CustomerInfo{Name: "Dana Price", Company: "Acme Builders & Sons"},
		Items: []LineItem{
			{Name: "Wood Filler", PackSize: "500g", SKU: "WF-100-500", Quantity: 2,
				UnitPrice: money.MustFromString("24.99"), LineTotal: money.MustFromString("49.98")},
		},
		ItemCount: 2,
		Subtotal:  money.MustFromString("49.98"),
		Discount:  money.Zero,
		Tax:       money.MustFromString("5.00"),
		Total:     money.MustFromString("54.98"),
	}
}

func TestRenderHTML(t *testing.T) {
	svc := NewService(&config.Config{})
	assert.Equal(t, uint(300), svc.dpi)

	html, err := svc.RenderHTML(sampleInvoice())
	require.NoError(t, err)

	assert.Contains(t, html, "INV-20261018-00001")
	assert.Contains(t, html, "Wood Filler")
	assert.Contains(t, html, "500g")
	assert.Contains(t, html, "24.99")
	assert.Contains(t, html, "USD 54.98")
	assert.Contains(t, html, "Acme Builders &amp; Sons")
	assert.NotContains(t, html, "Discount:")
}

func TestRenderHTMLShowsDiscount(t *testing.T) {
	svc := NewService(&config.Config{Invoice: config.InvoiceConfig{DPI: 150}})
	assert.Equal(t, uint(150), svc.dpi)

	data := sampleInvoice()
	data.Discount = money.MustFromString("4.98")

	html, err := svc.RenderHTML(data)
	require.NoError(t, err)
	assert.Contains(t, html, "-4.98")
}
