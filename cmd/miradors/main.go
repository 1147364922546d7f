package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/miradors/internal/config"
	"github.com/hamed0406/miradors/internal/httpapi"
	"github.com/hamed0406/miradors/internal/logging"
	"github.com/hamed0406/miradors/internal/metrics"
	"github.com/hamed0406/miradors/internal/notify"
	"github.com/hamed0406/miradors/internal/probe"
	"github.com/hamed0406/miradors/internal/repo/memory"
	"github.com/hamed0406/miradors/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	settings := config.SettingsFromEnv()
	policy := string(settings.OnConfigError)
	var once bool

	cmd := &cobra.Command{
		Use:   "miradors",
		Short: "Periodic HTTP availability monitor with email alerts",
		Long: `miradors probes a list of HTTP endpoints on a fixed interval and sends
one aggregated email through Mailgun whenever at least one of them is
unreachable. The target list, interval and email settings are re-read
every cycle from MIRADORS_CONFIG_FILE or from MIRADORS_* variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Runs for subcommands too, so preflight checks the flag value.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			settings.OnConfigError = config.ConfigErrorPolicy(policy)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings, once)
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&settings.LogDir, "log-dir", settings.LogDir, "directory for the rotating JSON log file; empty logs to stdout only")
	fs.StringVar(&settings.LogLevel, "log-level", settings.LogLevel, "debug|info|warn|error")
	fs.StringVar(&settings.StatusAddr, "status-addr", settings.StatusAddr, "bind address of the status API, e.g. :9090; empty disables it")
	fs.StringVar(&policy, "on-config-error", policy, "exit|retry: what to do when a cycle's config fails to load")
	cmd.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")

	cmd.AddCommand(newPreflightCommand(&settings))
	return cmd
}

func run(ctx context.Context, settings config.Settings, once bool) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	logger, err := logging.NewLogger(logging.Options{Dir: settings.LogDir, Level: settings.LogLevel})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	provider := config.NewProvider(config.EnvPrefix)
	reports := memory.New()
	m := metrics.New()

	sched := scheduler.New(
		logger,
		provider,
		probe.NewSequential(probe.NewHTTPChecker(0), logger),
		notify.NewDispatcher(notify.MailgunFactory(settings.MailgunAPIBase), logger),
		reports,
		m,
		settings,
	)

	logger.Info("miradors_start",
		zap.String("config_source", provider.Source()),
		zap.String("status_addr", settings.StatusAddr),
		zap.Bool("once", once),
	)

	if once {
		rep, _, err := sched.RunOnce(ctx)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			logger.Info("miradors_stopped")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("once_done", zap.Bool("healthy", rep.Healthy()), zap.Duration("took", rep.Duration))
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})
	if settings.StatusAddr != "" {
		status := httpapi.NewServer(logger, reports, m.Handler(), settings.StatusAPIKeys)
		g.Go(func() error {
			return status.Serve(gctx, settings.StatusAddr)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		logger.Info("miradors_stopped")
		return nil
	}
	if err != nil {
		logger.Error("miradors_exit", zap.Error(err))
	}
	return err
}
