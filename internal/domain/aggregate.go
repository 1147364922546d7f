package domain

import "sort"

// FailureSet maps a failing target URL to its error description.
type FailureSet map[string]string

func (f FailureSet) Empty() bool { return len(f) == 0 }

// Targets returns the failing targets in sorted order.
func (f FailureSet) Targets() []string {
	out := make([]string, 0, len(f))
	for t := range f {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Aggregate reduces a cycle's results to its failures. A target that fails
// more than once keeps its last description.
func Aggregate(results []CheckResult) FailureSet {
	out := make(FailureSet)
	for _, r := range results {
		if r.OK() {
			continue
		}
		out[r.Target] = r.Error
	}
	return out
}
