// Package errs defines the closed set of error kinds a monitoring cycle can
// produce. Components wrap their failures with one of these kinds at their
// boundary so the scheduler can decide what to do without inspecting strings.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the stage of the cycle that produced it.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors not produced by this package.
	KindUnknown Kind = iota
	// KindConfig covers missing or invalid fields and unreadable or unparseable files.
	KindConfig
	// KindProbe covers a connection or timeout failure for a single target.
	KindProbe
	// KindDispatch covers a failed notification send.
	KindDispatch
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindProbe:
		return "probe"
	case KindDispatch:
		return "dispatch"
	default:
		return "unknown"
	}
}

// Error is a kinded error. Op names the operation that failed, e.g. "load".
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against another *Error of the same kind with no Op or Err
// set, so errors.Is(err, errs.Config) works as a kind test.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// Kind sentinels for use with errors.Is.
var (
	Config   = &Error{Kind: KindConfig}
	Probe    = &Error{Kind: KindProbe}
	Dispatch = &Error{Kind: KindDispatch}
)

// E wraps err with kind and op. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Configf builds a KindConfig error from a format string.
func Configf(op, format string, args ...any) error {
	return &Error{Kind: KindConfig, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
