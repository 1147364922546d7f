package probe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/miradors/internal/domain"
)

// Sequential runs a Checker over a target list one target at a time, so a
// cycle's total duration is the sum of its probes.
type Sequential struct {
	Checker Checker
	Logger  *zap.Logger
}

func NewSequential(c Checker, logger *zap.Logger) *Sequential {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequential{Checker: c, Logger: logger}
}

// Run returns exactly one result per target, in input order. Each probe gets
// its own timeout derived from ctx.
func (s *Sequential) Run(ctx context.Context, targets []string, timeout time.Duration) []domain.CheckResult {
	results := make([]domain.CheckResult, 0, len(targets))
	for _, t := range targets {
		cctx, cancel := context.WithTimeout(ctx, timeout)
		r := s.Checker.Check(cctx, t)
		cancel()

		if r.OK() {
			s.Logger.Info("probe_ok",
				zap.String("url", t),
				zap.Int("status", r.StatusCode),
				zap.Duration("latency", r.Latency),
			)
		} else {
			s.Logger.Warn("probe_failed",
				zap.String("url", t),
				zap.Duration("latency", r.Latency),
				zap.Error(r.Err()),
			)
		}
		results = append(results, r)
	}
	return results
}
