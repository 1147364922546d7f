package config

import (
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const DefaultRequestTimeout = 10 * time.Second

// Config is the snapshot one cycle runs with. It is never mutated after Load
// returns it.
type Config struct {
	Targets        []string           `json:"targets"`
	CheckInterval  time.Duration      `json:"check_interval_in_seconds"`
	RequestTimeout time.Duration      `json:"request_timeout_in_seconds"`
	Notification   NotificationConfig `json:"email_service"`
}

// NotificationConfig identifies the sender, the single recipient and the
// email provider account used for alerts.
type NotificationConfig struct {
	SenderAddress     string `json:"sender_email"`
	SenderDisplayName string `json:"sender_displayed_name"`
	RecipientAddress  string `json:"recipient_email"`
	ProviderDomain    string `json:"domain"`
	ProviderAPIKey    string `json:"api_key"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Targets,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateTargetURL)),
		),
		validation.Field(&c.CheckInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Notification),
	)
}

func (n NotificationConfig) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.SenderAddress, validation.Required, is.EmailFormat),
		validation.Field(&n.SenderDisplayName, validation.Required),
		validation.Field(&n.RecipientAddress, validation.Required, is.EmailFormat),
		validation.Field(&n.ProviderDomain, validation.Required),
		validation.Field(&n.ProviderAPIKey, validation.Required),
	)
}

func validateTargetURL(value interface{}) error {
	target, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	u, err := url.Parse(target)
	if err != nil || !u.IsAbs() {
		return validation.NewError("validation_invalid_url", "must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if u.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}
	return nil
}

// ParseTargets splits a raw target list on spaces and commas, dropping empty
// entries. Order and duplicates are preserved.
func ParseTargets(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
