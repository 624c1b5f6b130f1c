// internal/worker/service.go
package worker

import (
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/queue"
)

// Service runs the background task server
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *logrus.Logger
}

// NewService creates the task server. It fails when the queue is disabled.
func NewService(cfg *config.Config, consumer *Consumer, logger *logrus.Logger) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}

	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = logger
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	return &Service{server: server, mux: mux, logger: logger}, nil
}

// Start processes tasks until Stop is called
func (s *Service) Start() error {
	s.logger.Info("Worker started")
	return s.server.Start(s.mux)
}

// Stop waits for running tasks and stops the server
func (s *Service) Stop() {
	s.server.Shutdown()
	s.logger.Info("Worker stopped")
}
