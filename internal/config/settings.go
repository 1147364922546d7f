package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ConfigErrorPolicy decides what the loop does when a cycle's config fails to load.
type ConfigErrorPolicy string

const (
	// PolicyExit stops the loop and surfaces the error.
	PolicyExit ConfigErrorPolicy = "exit"
	// PolicyRetry logs the error and tries again after a sleep.
	PolicyRetry ConfigErrorPolicy = "retry"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type Settings struct {
	LogDir              string            // rotating log file directory; empty logs to stdout only
	LogLevel            string            // debug|info|warn|error
	StatusAddr          string            // status API bind address, e.g. ":9090"; empty disables it
	StatusAPIKeys       []string          // keys accepted by /api/status; empty allows all
	OnConfigError       ConfigErrorPolicy // exit|retry
	ConfigRetryInterval time.Duration     // sleep after a config error when no interval is known yet
	MailgunAPIBase      string            // optional, e.g. https://api.eu.mailgun.net/v3
}

func SettingsFromEnv() Settings {
	level := strings.ToLower(strings.TrimSpace(os.Getenv(EnvPrefix + "_LOG_LEVEL")))
	if level == "" {
		level = LogLevelInfo
	}

	policy := ConfigErrorPolicy(strings.ToLower(strings.TrimSpace(os.Getenv(EnvPrefix + "_ON_CONFIG_ERROR"))))
	if policy == "" {
		policy = PolicyExit
	}

	retry := 60 * time.Second
	if v := os.Getenv(EnvPrefix + "_CONFIG_RETRY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			retry = time.Duration(n) * time.Second
		}
	}

	return Settings{
		LogDir:              strings.TrimSpace(os.Getenv(EnvPrefix + "_LOG_DIR")),
		LogLevel:            level,
		StatusAddr:          strings.TrimSpace(os.Getenv(EnvPrefix + "_STATUS_ADDR")),
		StatusAPIKeys:       splitList(os.Getenv(EnvPrefix + "_STATUS_API_KEYS")),
		OnConfigError:       policy,
		ConfigRetryInterval: retry,
		MailgunAPIBase:      strings.TrimSpace(os.Getenv(EnvPrefix + "_MAILGUN_API_BASE")),
	}
}

func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.LogLevel,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
		validation.Field(&s.OnConfigError,
			validation.Required,
			validation.In(PolicyExit, PolicyRetry),
		),
		validation.Field(&s.StatusAddr, validation.By(validateHostPort)),
		validation.Field(&s.ConfigRetryInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&s.MailgunAPIBase, is.URL),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if addr == "" {
		return nil
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}
	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}
	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
