package config

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/hamed0406/miradors/internal/errs"
)

// EnvPrefix namespaces every environment variable the monitor reads.
const EnvPrefix = "MIRADORS"

const (
	keyWebsites        = "websites_to_check"
	keyCheckInterval   = "check_interval_in_seconds"
	keyRequestTimeout  = "request_timeout_in_seconds"
	keySenderEmail     = "email_service.sender_email"
	keySenderName      = "email_service.sender_displayed_name"
	keyProviderDomain  = "email_service.domain"
	keyProviderAPIKey  = "email_service.api_key"
	keyRecipientEmail  = "email_service.recipient_email"
	configFileEnvInfix = "_CONFIG_FILE"
)

// envKeys are bound in env form. The structured targets list is file-only.
var envKeys = []string{
	keyWebsites,
	keyCheckInterval,
	keyRequestTimeout,
	keySenderEmail,
	keySenderName,
	keyProviderDomain,
	keyProviderAPIKey,
	keyRecipientEmail,
}

type rawNotification struct {
	SenderEmail         string `mapstructure:"sender_email"`
	SenderDisplayedName string `mapstructure:"sender_displayed_name"`
	Domain              string `mapstructure:"domain"`
	APIKey              string `mapstructure:"api_key"`
	RecipientEmail      string `mapstructure:"recipient_email"`
}

// Second counts are decoded as float64 so fractions and out-of-range values
// reach validation instead of being truncated by the weak decoder.
type rawConfig struct {
	WebsitesToCheck         string          `mapstructure:"websites_to_check"`
	Targets                 []string        `mapstructure:"targets"`
	CheckIntervalInSeconds  float64         `mapstructure:"check_interval_in_seconds" json:"check_interval_in_seconds"`
	RequestTimeoutInSeconds float64         `mapstructure:"request_timeout_in_seconds" json:"request_timeout_in_seconds"`
	EmailService            rawNotification `mapstructure:"email_service"`
}

// maxSeconds is the largest whole second count a time.Duration can hold.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// Provider builds a fresh Config from the file named by <prefix>_CONFIG_FILE
// when that variable is set, and from <prefix>_* variables otherwise. It keeps
// no state between calls.
type Provider struct {
	prefix string
}

func NewProvider(prefix string) *Provider {
	if prefix == "" {
		prefix = EnvPrefix
	}
	return &Provider{prefix: prefix}
}

// FileEnv is the name of the variable that selects file form.
func (p *Provider) FileEnv() string { return p.prefix + configFileEnvInfix }

// Source describes where the next Load will read from.
func (p *Provider) Source() string {
	if path := p.filePath(); path != "" {
		return "file:" + path
	}
	return "env:" + p.prefix + "_*"
}

// Load reads and validates the configuration. Every failure is a KindConfig
// error; nothing falls back to a default except the optional request timeout.
func (p *Provider) Load() (Config, error) {
	var (
		v   *viper.Viper
		err error
	)
	if path := p.filePath(); path != "" {
		v, err = p.fromFile(path)
		if err != nil {
			return Config{}, errs.E(errs.KindConfig, "read "+path, err)
		}
	} else {
		v = p.fromEnv()
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, errs.E(errs.KindConfig, "decode", err)
	}

	timeoutSet := v.IsSet(keyRequestTimeout)
	if err := raw.validate(timeoutSet); err != nil {
		return Config{}, errs.E(errs.KindConfig, "validate", err)
	}

	cfg := raw.toConfig(timeoutSet)
	if err := cfg.Validate(); err != nil {
		return Config{}, errs.E(errs.KindConfig, "validate", err)
	}
	return cfg, nil
}

func (p *Provider) filePath() string {
	return strings.TrimSpace(os.Getenv(p.FileEnv()))
}

func (p *Provider) fromFile(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *Provider) fromEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(p.prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		// BindEnv only errors when called without a key.
		_ = v.BindEnv(k)
	}
	return v
}

func (r rawConfig) validate(timeoutSet bool) error {
	rules := []*validation.FieldRules{
		validation.Field(&r.CheckIntervalInSeconds, validation.By(wholeSeconds)),
	}
	if timeoutSet {
		rules = append(rules, validation.Field(&r.RequestTimeoutInSeconds, validation.By(wholeSeconds)))
	}
	return validation.ValidateStruct(&r, rules...)
}

// wholeSeconds accepts integral second counts from 1 up to maxSeconds.
func wholeSeconds(value interface{}) error {
	n, ok := value.(float64)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a number")
	}
	if n != math.Trunc(n) {
		return validation.NewError("validation_not_whole", "must be a whole number of seconds")
	}
	if n < 1 {
		return validation.NewError("validation_min_seconds", "must be at least 1 second")
	}
	if n > float64(maxSeconds) {
		return validation.NewError("validation_max_seconds", "must be no greater than "+strconv.FormatInt(maxSeconds, 10)+" seconds")
	}
	return nil
}

func (r rawConfig) toConfig(timeoutSet bool) Config {
	targets := ParseTargets(r.WebsitesToCheck)
	for _, t := range r.Targets {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}

	timeout := DefaultRequestTimeout
	if timeoutSet {
		timeout = time.Duration(r.RequestTimeoutInSeconds) * time.Second
	}

	return Config{
		Targets:        targets,
		CheckInterval:  time.Duration(r.CheckIntervalInSeconds) * time.Second,
		RequestTimeout: timeout,
		Notification: NotificationConfig{
			SenderAddress:     strings.TrimSpace(r.EmailService.SenderEmail),
			SenderDisplayName: strings.TrimSpace(r.EmailService.SenderDisplayedName),
			RecipientAddress:  strings.TrimSpace(r.EmailService.RecipientEmail),
			ProviderDomain:    strings.TrimSpace(r.EmailService.Domain),
			ProviderAPIKey:    strings.TrimSpace(r.EmailService.APIKey),
		},
	}
}
