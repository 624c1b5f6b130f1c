// internal/pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/hardware-admin/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the application logger from the logging configuration.
// Output always goes to stdout; when LOG_FILE is set it is also written to a
// rotated file.
func New(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	// Set log format based on config
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetOutput(newWriter(cfg))
	return logger
}

func newWriter(cfg config.LoggingConfig) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return os.Stdout
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
	return io.MultiWriter(os.Stdout, rotated)
}

// Discard returns a logger that drops everything, for tests
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
