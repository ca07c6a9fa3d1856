package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"gopkg.in/mail.v2"

	"github.com/onurcolak/dispatch-service/environments"
)

const defaultSMTPPort = 587

// Mailer delivers email jobs over SMTP. The server comes from the provider's
// base URL (smtp://host:port); credentials come from configuration.
type Mailer struct {
	username string
	password string
	from     string
	timeout  time.Duration
}

func NewMailer(cfg environments.SMTPConfig, timeout time.Duration) *Mailer {
	return &Mailer{
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		timeout:  timeout,
	}
}

func (m *Mailer) Send(ctx context.Context, server *url.URL, to, subject, body string) error {
	port := defaultSMTPPort
	if p := server.Port(); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid SMTP port %q: %w", p, err)
		}
		port = parsed
	}

	message := mail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	dialer := mail.NewDialer(server.Hostname(), port, m.username, m.password)
	dialer.Timeout = m.timeout

	done := make(chan error, 1)
	go func() {
		done <- dialer.DialAndSend(message)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
