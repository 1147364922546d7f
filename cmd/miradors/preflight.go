package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/hamed0406/miradors/internal/config"
)

func newPreflightCommand(settings *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Validate settings and the monitoring config without probing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return preflight(cmd.OutOrStdout(), *settings, config.NewProvider(config.EnvPrefix))
		},
	}
}

// preflight prints one line per check and returns every failure combined.
func preflight(out io.Writer, settings config.Settings, provider *config.Provider) error {
	ok := func(format string, args ...any) { fmt.Fprintf(out, "✔ "+format+"\n", args...) }
	warn := func(format string, args ...any) { fmt.Fprintf(out, "⚠ "+format+"\n", args...) }
	var failed error
	fail := func(err error) {
		fmt.Fprintln(out, "✖", err)
		failed = multierr.Append(failed, err)
	}

	if err := settings.Validate(); err != nil {
		for _, e := range flatten("settings", err) {
			fail(e)
		}
	} else {
		ok("settings: log level %s, on config error %s", settings.LogLevel, settings.OnConfigError)
	}

	if settings.StatusAddr != "" && len(settings.StatusAPIKeys) == 0 {
		warn("status API on %s has no API keys; /api/status is open", settings.StatusAddr)
	}

	ok("config source %s", provider.Source())
	cfg, err := provider.Load()
	if err != nil {
		for _, e := range flatten("config", err) {
			fail(e)
		}
		return failed
	}

	ok("%d target(s), every %s, request timeout %s", len(cfg.Targets), cfg.CheckInterval, cfg.RequestTimeout)
	for _, t := range cfg.Targets {
		ok("target %s", t)
	}
	n := cfg.Notification
	ok("alerts from %q <%s> to %s via %s", n.SenderDisplayName, n.SenderAddress, n.RecipientAddress, n.ProviderDomain)

	if failed == nil {
		ok("preflight passed")
	}
	return failed
}

// flatten splits ozzo validation errors into one error per field so each
// gets its own line. Other errors are returned as is.
func flatten(prefix string, err error) []error {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return []error{fmt.Errorf("%s: %w", prefix, err)}
	}

	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []error
	for _, k := range keys {
		out = append(out, flatten(prefix+"."+k, verrs[k])...)
	}
	return out
}
