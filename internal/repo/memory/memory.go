package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/miradors/internal/domain"
)

// Store holds the last cycle report behind a RWMutex. The scheduler writes,
// the status API reads.
type Store struct {
	mu     sync.RWMutex
	last   domain.CycleReport
	exists bool
}

func New() *Store {
	return &Store{}
}

func (m *Store) Save(ctx context.Context, r domain.CycleReport) error {
	// Copy the slices so later edits by the caller don't race with readers.
	results := make([]domain.CheckResult, len(r.Results))
	copy(results, r.Results)
	r.Results = results

	failures := make(domain.FailureSet, len(r.Failures))
	for k, v := range r.Failures {
		failures[k] = v
	}
	r.Failures = failures

	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = r
	m.exists = true
	return nil
}

func (m *Store) Latest(ctx context.Context) (domain.CycleReport, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.exists, nil
}
