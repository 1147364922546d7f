package probe

import (
	"context"

	"github.com/hamed0406/miradors/internal/domain"
)

// Checker performs one attempt against one target. Failures are reported in
// the result rather than as an error so that one bad target never aborts a
// cycle.
type Checker interface {
	Check(ctx context.Context, target string) domain.CheckResult
}
