// cmd/mailcheck/main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/your-org/hardware-admin/internal/config"
	"github.com/your-org/hardware-admin/internal/pkg/email"
	"github.com/your-org/hardware-admin/internal/pkg/logger"
)

// Checks the SMTP settings and optionally sends a test message.
func main() {
	to := flag.String("to", "", "send a test email to this address")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger := logger.New(cfg.Logging)
	emailService := email.NewEmailService(cfg, appLogger)

	if err := emailService.TestConnection(); err != nil {
		appLogger.WithError(err).Fatal("SMTP connection failed")
	}
	appLogger.WithField("host", cfg.Email.SMTPHost).Info("SMTP connection OK")

	if *to == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = emailService.SendEmail(ctx, &email.Email{
		To:          []string{*to},
		Subject:     "Test email from " + cfg.App.CompanyName,
		HTMLContent: "<h1>It works</h1><p>Outgoing mail is configured correctly.</p>",
		Type:        email.EmailTypeTest,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Send failed")
	}

	appLogger.WithField("to", *to).Info("Test email sent")
}
