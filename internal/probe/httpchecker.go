package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/miradors/internal/domain"
)

// maxDrain bounds how much of a response body is read so the connection can
// be reused.
const maxDrain = 64 << 10

type HTTPChecker struct {
	Client *http.Client
}

// NewHTTPChecker returns a checker whose client gives up after timeout. Zero
// leaves the bound to the context passed to Check.
func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

// Check issues a single GET. Any HTTP response counts as reachable whatever
// its status; only transport errors are failures, and their text is kept as is.
func (h *HTTPChecker) Check(ctx context.Context, target string) domain.CheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.Failed(target, 0, err.Error())
	}

	start := time.Now()
	resp, err := h.Client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return domain.Failed(target, latency, err.Error())
	}
	defer resp.Body.Close()
	_, _ = io.CopyN(io.Discard, resp.Body, maxDrain)

	return domain.Succeeded(target, latency, resp.StatusCode)
}
