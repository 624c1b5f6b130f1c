package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/hardware-admin/internal/config"
)

func TestDisabledClientDropsTasks(t *testing.T) {
	client := NewClient(&config.Config{})

	assert.False(t, client.Enabled())
	assert.NoError(t, client.EnqueueInvoiceEmail(InvoiceEmailPayload{OrderID: 1}))
	assert.NoError(t, client.EnqueueLowStockAlert(LowStockAlertPayload{AlertID: 1}))
	assert.NoError(t, client.Close())

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
	assert.NoError(t, nilClient.Close())
}

func TestTaskPayloads(t *testing.T) {
	task, err := NewInvoiceEmailTask(InvoiceEmailPayload{OrderID: 42, Email: "a@b.test"})
	require.NoError(t, err)
	assert.Equal(t, TaskInvoiceEmail, task.Type())

	var invoice InvoiceEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &invoice))
	assert.Equal(t, uint(42), invoice.OrderID)

	task, err = NewLowStockAlertTask(LowStockAlertPayload{SKU: "WF-100-500", Quantity: 2, ReorderLevel: 5})
	require.NoError(t, err)
	assert.Equal(t, TaskLowStockAlert, task.Type())
}

func TestBuildServerConfig(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{Host: "cache", Port: "6380", Password: "pw"},
		Queue: config.QueueConfig{Enabled: true, Concurrency: 3, RedisDB: 2},
	}

	opt, serverCfg := BuildServerConfig(cfg)
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, 2, opt.DB)
	assert.Equal(t, 3, serverCfg.Concurrency)
	assert.Equal(t, 1, serverCfg.Queues[DefaultQueue])
}
