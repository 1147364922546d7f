package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/hamed0406/miradors/internal/config"
)

const defaultSendTimeout = 30 * time.Second

// Mailgun sends through the Mailgun HTTP API of a single sending domain.
type Mailgun struct {
	Domain  string
	APIKey  string
	APIBase string // optional override, e.g. the EU region or a test server
	Timeout time.Duration
}

func NewMailgun(cfg config.NotificationConfig) *Mailgun {
	return &Mailgun{
		Domain:  cfg.ProviderDomain,
		APIKey:  cfg.ProviderAPIKey,
		Timeout: defaultSendTimeout,
	}
}

// MailgunFactory returns a SenderFactory that points every sender at apiBase
// when it is non-empty.
func MailgunFactory(apiBase string) SenderFactory {
	return func(cfg config.NotificationConfig) Sender {
		m := NewMailgun(cfg)
		m.APIBase = apiBase
		return m
	}
}

func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	if m.Domain == "" || m.APIKey == "" {
		return errors.New("mailgun: domain and api key are required")
	}

	mg := mailgun.NewMailgun(m.Domain, m.APIKey)
	if m.APIBase != "" {
		mg.SetAPIBase(m.APIBase)
	}

	message := mg.NewMessage(msg.From, msg.Subject, msg.Text, msg.To...)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, _, err := mg.Send(ctx, message); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}
