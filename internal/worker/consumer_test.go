package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/domain/order"
	"github.com/your-org/hardware-admin/internal/pkg/email"
	"github.com/your-org/hardware-admin/internal/pkg/logger"
	"github.com/your-org/hardware-admin/internal/pkg/money"
	"github.com/your-org/hardware-admin/internal/pkg/pdf"
	"github.com/your-org/hardware-admin/internal/queue"
)

type fakeInvoices map[uint]*pdf.InvoiceData

func (f fakeInvoices) GetInvoiceData(_ order.Actor, orderID uint) (*pdf.InvoiceData, error) {
	data, ok := f[orderID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return data, nil
}

type fakeRenderer struct {
	err error
}

func (r fakeRenderer) GenerateInvoice(*pdf.InvoiceData) (*bytes.Buffer, error) {
	if r.err != nil {
		return nil, r.err
	}
	return bytes.NewBufferString("%PDF"), nil
}

type sentInvoice struct {
	to   string
	data email.InvoiceEmailData
	pdf  []byte
}

type fakeMailer struct {
	invoices []sentInvoice
	alerts   []email.LowStockAlertData
}

func (m *fakeMailer) SendInvoiceEmail(_ context.Context, to string, data email.InvoiceEmailData, pdf []byte) error {
	m.invoices = append(m.invoices, sentInvoice{to: to, data: data, pdf: pdf})
	return nil
}

func (m *fakeMailer) SendLowStockAlert(_ context.Context, data email.LowStockAlertData) error {
	m.alerts = append(m.alerts, data)
	return nil
}

func invoiceTask(t *testing.T, payload queue.InvoiceEmailPayload) *asynq.Task {
	t.Helper()
	task, err := queue.NewInvoiceEmailTask(payload)
	require.NoError(t, err)
	return task
}

func newTestConsumer(renderErr error) (*Consumer, *fakeMailer) {
	invoices := fakeInvoices{
		1: {
			InvoiceNumber: "INV-20261018-00001",
			OrderNumber:   "ORD-20261018-00001",
			Currency:      "USD",
			Customer:      pdf.CustomerInfo{Name: "Dana Price", Company: "Acme Builders", Email: "accounts@acme.test"},
			Total:         money.MustFromString("88.00"),
		},
		2: {InvoiceNumber: "INV-20261018-00002", Customer: pdf.CustomerInfo{Name: "Walk-in"}},
	}
	mailer := &fakeMailer{}
	return NewConsumer(invoices, fakeRenderer{err: renderErr}, mailer, logger.Discard()), mailer
}

func TestHandleInvoiceEmail(t *testing.T) {
	consumer, mailer := newTestConsumer(nil)
	ctx := context.Background()

	require.NoError(t, consumer.handleInvoiceEmail(ctx, invoiceTask(t, queue.InvoiceEmailPayload{OrderID: 1})))
	require.Len(t, mailer.invoices, 1)
	sent := mailer.invoices[0]
	assert.Equal(t, "accounts@acme.test", sent.to)
	assert.Equal(t, "Acme Builders", sent.data.CustomerName)
	assert.Equal(t, "88.00", sent.data.Total)
	assert.Equal(t, []byte("%PDF"), sent.pdf)

	require.NoError(t, consumer.handleInvoiceEmail(ctx, invoiceTask(t, queue.InvoiceEmailPayload{OrderID: 1, Email: "site@acme.test"})))
	assert.Equal(t, "site@acme.test", mailer.invoices[1].to)
}

func TestHandleInvoiceEmailSkips(t *testing.T) {
	consumer, mailer := newTestConsumer(nil)
	ctx := context.Background()

	assert.NoError(t, consumer.handleInvoiceEmail(ctx, invoiceTask(t, queue.InvoiceEmailPayload{OrderID: 2})))
	assert.NoError(t, consumer.handleInvoiceEmail(ctx, invoiceTask(t, queue.InvoiceEmailPayload{OrderID: 404})))
	assert.NoError(t, consumer.handleInvoiceEmail(ctx, invoiceTask(t, queue.InvoiceEmailPayload{})))
	assert.Empty(t, mailer.invoices)

	err := consumer.handleInvoiceEmail(ctx, asynq.NewTask(queue.TaskInvoiceEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleInvoiceEmailWithoutPDF(t *testing.T) {
	consumer, mailer := newTestConsumer(errors.New("wkhtmltopdf not found"))

	require.NoError(t, consumer.handleInvoiceEmail(context.Background(), invoiceTask(t, queue.InvoiceEmailPayload{OrderID: 1})))
	require.Len(t, mailer.invoices, 1)
	assert.Nil(t, mailer.invoices[0].pdf)
}

func TestHandleLowStockAlert(t *testing.T) {
	consumer, mailer := newTestConsumer(nil)

	body, err := json.Marshal(queue.LowStockAlertPayload{SKU: "WF-100-500", AlertType: "low_stock", Quantity: 2, ReorderLevel: 5})
	require.NoError(t, err)

	require.NoError(t, consumer.handleLowStockAlert(context.Background(), asynq.NewTask(queue.TaskLowStockAlert, body)))
	require.Len(t, mailer.alerts, 1)
	assert.Equal(t, "WF-100-500", mailer.alerts[0].SKU)
	assert.Equal(t, 2, mailer.alerts[0].Quantity)
}
