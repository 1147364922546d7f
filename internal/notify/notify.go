package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/miradors/internal/config"
	"github.com/hamed0406/miradors/internal/domain"
	"github.com/hamed0406/miradors/internal/errs"
)

const Subject = "Miradors: Some monitored websites are not reachable!"

// ErrEmptyFailureSet is returned when Dispatch is called for a healthy cycle.
var ErrEmptyFailureSet = errors.New("notify: no failures to report")

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message through an email provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFactory builds a Sender for the credentials of the current cycle.
type SenderFactory func(cfg config.NotificationConfig) Sender

type Dispatcher struct {
	NewSender SenderFactory
	Logger    *zap.Logger
}

func NewDispatcher(f SenderFactory, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{NewSender: f, Logger: logger}
}

// Compose lists the failing targets only; error descriptions stay in the logs.
func Compose(failures domain.FailureSet, cfg config.NotificationConfig) Message {
	targets := failures.Targets()
	from := mail.Address{Name: cfg.SenderDisplayName, Address: cfg.SenderAddress}
	return Message{
		From:    from.String(),
		To:      []string{cfg.RecipientAddress},
		Subject: Subject,
		HTML:    strings.Join(targets, "<br/>"),
		Text:    strings.Join(targets, "\n"),
	}
}

// Dispatch sends exactly one message for a non-empty failure set. There is
// no retry; the next unhealthy cycle sends again.
func (d *Dispatcher) Dispatch(ctx context.Context, failures domain.FailureSet, cfg config.NotificationConfig) error {
	if failures.Empty() {
		return errs.E(errs.KindDispatch, "compose", ErrEmptyFailureSet)
	}

	msg := Compose(failures, cfg)
	if err := d.NewSender(cfg).Send(ctx, msg); err != nil {
		return errs.E(errs.KindDispatch, "send", fmt.Errorf("to %s: %w", cfg.RecipientAddress, err))
	}

	d.Logger.Info("alert_sent",
		zap.String("to", cfg.RecipientAddress),
		zap.Int("failing", len(failures)),
	)
	return nil
}
