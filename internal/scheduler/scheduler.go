package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/miradors/internal/config"
	"github.com/hamed0406/miradors/internal/domain"
	"github.com/hamed0406/miradors/internal/errs"
	"github.com/hamed0406/miradors/internal/metrics"
	"github.com/hamed0406/miradors/internal/repo"
)

const defaultRetryInterval = 60 * time.Second

type Loader interface {
	Load() (config.Config, error)
}

type Prober interface {
	Run(ctx context.Context, targets []string, timeout time.Duration) []domain.CheckResult
}

type Alerter interface {
	Dispatch(ctx context.Context, failures domain.FailureSet, cfg config.NotificationConfig) error
}

// Scheduler drives the check-aggregate-notify cycle. Only one cycle is in
// flight at a time and nothing carries over between cycles except the last
// good interval, which the retry policy sleeps for.
type Scheduler struct {
	Logger  *zap.Logger
	Loader  Loader
	Prober  Prober
	Alerter Alerter
	Reports repo.ReportStore // optional
	Metrics *metrics.Metrics // optional

	OnConfigError config.ConfigErrorPolicy
	RetryInterval time.Duration

	lastInterval time.Duration
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error
}

func New(
	logger *zap.Logger,
	loader Loader,
	prober Prober,
	alerter Alerter,
	reports repo.ReportStore,
	m *metrics.Metrics,
	settings config.Settings,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	retry := settings.ConfigRetryInterval
	if retry <= 0 {
		retry = defaultRetryInterval
	}
	policy := settings.OnConfigError
	if policy == "" {
		policy = config.PolicyExit
	}
	return &Scheduler{
		Logger:        logger,
		Loader:        loader,
		Prober:        prober,
		Alerter:       alerter,
		Reports:       reports,
		Metrics:       m,
		OnConfigError: policy,
		RetryInterval: retry,
	}
}

// Run executes a cycle immediately, sleeps for the interval that cycle
// loaded, and repeats until ctx is cancelled or a config error occurs under
// the exit policy. Dispatch errors never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Logger.Info("scheduler_started", zap.String("on_config_error", string(s.OnConfigError)))
	for {
		if err := ctx.Err(); err != nil {
			s.Logger.Info("scheduler_stopped")
			return err
		}

		_, interval, err := s.RunOnce(ctx)
		if errs.KindOf(err) == errs.KindConfig {
			if s.OnConfigError != config.PolicyRetry {
				return err
			}
			interval = s.retryInterval()
			s.Logger.Info("config_retry_scheduled", zap.Duration("in", interval))
		}

		if err := s.wait(ctx, interval); err != nil {
			s.Logger.Info("scheduler_stopped")
			return err
		}
	}
}

// RunOnce executes one cycle and returns its report along with the interval
// loaded in this same cycle. A config error stops the cycle before any probe
// and yields a zero interval. A dispatch error is returned after the report
// is saved. If ctx is cancelled while probing, the cycle is abandoned without
// aggregating, dispatching or saving, and ctx.Err() is returned.
func (s *Scheduler) RunOnce(ctx context.Context) (domain.CycleReport, time.Duration, error) {
	started := s.clock()

	cfg, err := s.Loader.Load()
	if err != nil {
		if errs.KindOf(err) != errs.KindConfig {
			err = errs.E(errs.KindConfig, "load", err)
		}
		s.Logger.Error("cycle_error", zap.String("stage", "config"), zap.Error(err))
		s.Metrics.ConfigError(started)
		return domain.CycleReport{StartedAt: started}, 0, err
	}
	s.lastInterval = cfg.CheckInterval

	results := s.Prober.Run(ctx, cfg.Targets, cfg.RequestTimeout)
	if err := ctx.Err(); err != nil {
		// Probes cut short by shutdown say nothing about the targets.
		s.Logger.Info("cycle_aborted", zap.Int("probed", len(results)), zap.Error(err))
		return domain.CycleReport{StartedAt: started}, cfg.CheckInterval, err
	}
	for _, r := range results {
		s.Metrics.ObserveProbe(r)
	}

	failures := domain.Aggregate(results)
	rep := domain.CycleReport{
		StartedAt: started,
		Results:   results,
		Failures:  failures,
	}

	var dispatchErr error
	if failures.Empty() {
		s.Logger.Info("cycle_healthy", zap.Int("targets", len(results)))
	} else {
		s.Logger.Warn("cycle_unhealthy",
			zap.Int("targets", len(results)),
			zap.Int("failing", len(failures)),
			zap.Strings("failed_targets", failures.Targets()),
		)
		rep.Dispatched = true
		if dispatchErr = s.Alerter.Dispatch(ctx, failures, cfg.Notification); dispatchErr != nil {
			rep.DispatchErr = dispatchErr.Error()
			s.Logger.Error("cycle_error", zap.String("stage", "dispatch"), zap.Error(dispatchErr))
		}
	}
	rep.Duration = s.clock().Sub(started)

	if s.Reports != nil {
		if err := s.Reports.Save(ctx, rep); err != nil {
			s.Logger.Warn("report_save_error", zap.Error(err))
		}
	}
	s.Metrics.ObserveCycle(rep)

	return rep, cfg.CheckInterval, dispatchErr
}

func (s *Scheduler) retryInterval() time.Duration {
	if s.lastInterval > 0 {
		return s.lastInterval
	}
	if s.RetryInterval > 0 {
		return s.RetryInterval
	}
	return defaultRetryInterval
}

func (s *Scheduler) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *Scheduler) wait(ctx context.Context, d time.Duration) error {
	if s.sleep != nil {
		return s.sleep(ctx, d)
	}
	return sleep(ctx, d)
}

// sleep blocks for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
