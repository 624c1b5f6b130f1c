// internal/queue/client.go
package queue

import (
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/your-org/hardware-admin/internal/config"
)

// DefaultQueue is the queue every task goes to
const DefaultQueue = "default"

// Client wraps the asynq client. A disabled client accepts every task and drops it.
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient creates a queue client
func NewClient(cfg *config.Config) *Client {
	if cfg == nil || !cfg.Queue.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}
	}
	return &Client{
		client:       asynq.NewClient(BuildRedisOpt(cfg)),
		enabled:      true,
		defaultQueue: DefaultQueue,
	}
}

// Enabled reports whether tasks are actually enqueued
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close closes the client
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueInvoiceEmail pushes an invoice email task
func (c *Client) EnqueueInvoiceEmail(payload InvoiceEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewInvoiceEmailTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue), asynq.MaxRetry(5)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// EnqueueLowStockAlert pushes a low stock alert task. Alerts for the same stock
// alert row are deduplicated for an hour.
func (c *Client) EnqueueLowStockAlert(payload LowStockAlertPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewLowStockAlertTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{
		asynq.Queue(c.defaultQueue),
		asynq.Unique(time.Hour),
	}, opts...)
	_, err = c.client.Enqueue(task, options...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// BuildServerConfig builds the worker server configuration
func BuildServerConfig(cfg *config.Config) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := 10
	if cfg.Queue.Concurrency > 0 {
		concurrency = cfg.Queue.Concurrency
	}
	return BuildRedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{DefaultQueue: 1},
	}
}

// BuildRedisOpt points asynq at the application Redis, on its own database
func BuildRedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Queue.RedisDB,
	}
}
