// internal/pkg/email/smtp.go
package email

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// sendSMTPEmail sends email using SMTP (Gmail, Outlook, or self-hosted)
func (s *EmailService) sendSMTPEmail(email *Email) error {
	cfg := s.config.Email

	// Validate SMTP configuration
	if cfg.SMTPHost == "" || cfg.SMTPUsername == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host or username")
	}

	auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)

	msg, err := s.buildMessage(email)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	recipients := append(append([]string{}, email.To...), email.CC...)
	return s.send(serverAddr, auth, cfg.FromEmail, recipients, msg)
}

// deliverSMTP picks implicit TLS or STARTTLS delivery
func (s *EmailService) deliverSMTP(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	if s.config.Email.SMTPUseTLS {
		return s.sendSMTPWithTLS(addr, auth, from, to, msg)
	}
	return smtp.SendMail(addr, auth, from, to, msg)
}

// buildMessage renders headers and body, as multipart/mixed when the email
// carries attachments
func (s *EmailService) buildMessage(email *Email) ([]byte, error) {
	cfg := s.config.Email

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", cfg.FromName), cfg.FromEmail)
	}

	var msg bytes.Buffer
	writeHeader := func(key, value string) {
		msg.WriteString(key + ": " + value + "\r\n")
	}
	writeHeader("From", from)
	writeHeader("To", strings.Join(email.To, ", "))
	if len(email.CC) > 0 {
		writeHeader("Cc", strings.Join(email.CC, ", "))
	}
	if cfg.ReplyTo != "" {
		writeHeader("Reply-To", cfg.ReplyTo)
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	writeHeader("MIME-Version", "1.0")

	if len(email.Attachments) == 0 {
		writeHeader("Content-Type", `text/html; charset="utf-8"`)
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLContent)
		return msg.Bytes(), nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writeHeader("Content-Type", "multipart/mixed; boundary="+writer.Boundary())
	msg.WriteString("\r\n")

	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="utf-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(email.HTMLContent)); err != nil {
		return nil, err
	}

	for _, attachment := range email.Attachments {
		contentType := attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", contentType, attachment.Filename)},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", attachment.Filename)},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(wrapBase64(attachment.Content)); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// wrapBase64 encodes content in 76 character lines
func wrapBase64(content []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(content)
	var out bytes.Buffer
	for len(encoded) > 76 {
		out.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	out.WriteString(encoded)
	return out.Bytes()
}

// sendSMTPWithTLS sends email using explicit TLS connection
func (s *EmailService) sendSMTPWithTLS(serverAddr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	client, err := s.dialTLS(serverAddr)
	if err != nil {
		return err
	}
	defer client.Quit()

	// Authenticate
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	// Set sender
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	// Set recipients
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", addr, err)
		}
	}

	// Send email content
	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send DATA command: %w", err)
	}

	if _, err := writer.Write(msg); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write email content: %w", err)
	}

	return writer.Close()
}

// TestConnection dials the SMTP server and authenticates without sending
func (s *EmailService) TestConnection() error {
	cfg := s.config.Email
	serverAddr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)

	var (
		client *smtp.Client
		err    error
	)
	if cfg.SMTPUseTLS {
		client, err = s.dialTLS(serverAddr)
	} else {
		client, err = smtp.Dial(serverAddr)
		if err == nil {
			if ok, _ := client.Extension("STARTTLS"); ok {
				err = client.StartTLS(&tls.Config{ServerName: cfg.SMTPHost})
			}
		}
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if cfg.SMTPUsername != "" {
		if err := client.Auth(smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	return client.Quit()
}

func (s *EmailService) dialTLS(serverAddr string) (*smtp.Client, error) {
	tlsConfig := &tls.Config{
		ServerName: s.config.Email.SMTPHost,
	}

	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS connection: %w", err)
	}

	client, err := smtp.NewClient(conn, s.config.Email.SMTPHost)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}
