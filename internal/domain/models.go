package domain

import (
	"errors"
	"time"

	"github.com/hamed0406/miradors/internal/errs"
)

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// CheckResult is the outcome of one probe against one target in one cycle.
// Error is only set for failures and holds the transport error text verbatim.
type CheckResult struct {
	Target     string        `json:"target"`
	Outcome    Outcome       `json:"outcome"`
	Latency    time.Duration `json:"latency"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	CheckedAt  time.Time     `json:"checked_at"`
}

func Succeeded(target string, latency time.Duration, status int) CheckResult {
	return CheckResult{
		Target:     target,
		Outcome:    OutcomeSuccess,
		Latency:    latency,
		StatusCode: status,
		CheckedAt:  time.Now().UTC(),
	}
}

func Failed(target string, latency time.Duration, description string) CheckResult {
	return CheckResult{
		Target:    target,
		Outcome:   OutcomeFailure,
		Latency:   latency,
		Error:     description,
		CheckedAt: time.Now().UTC(),
	}
}

func (r CheckResult) OK() bool { return r.Outcome == OutcomeSuccess }

// Err returns the failure as a KindProbe error, or nil on success.
func (r CheckResult) Err() error {
	if r.OK() {
		return nil
	}
	return errs.E(errs.KindProbe, r.Target, errors.New(r.Error))
}

// CycleReport summarises one cycle for logs and the status API.
type CycleReport struct {
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Results     []CheckResult `json:"results"`
	Failures    FailureSet    `json:"failures"`
	Dispatched  bool          `json:"dispatched"`
	DispatchErr string        `json:"dispatch_error,omitempty"`
}

func (c CycleReport) Healthy() bool { return c.Failures.Empty() }
