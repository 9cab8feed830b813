// Package reader implements the Repository Reader: the three-lens view of
// commit history (commit-level, daily net-diff, weekly net-diff) that the
// Orchestrator builds buckets and prompts from. The Reader is
// content-complete — it never samples, truncates, or filters commits for
// triviality; that classification belongs to the commit-tier LLM call.
package reader

import "time"

// Window is an inclusive analysis time range. Since and Until must carry
// the repository-local time.Location the caller wants calendar-date
// bucketing computed in; the Reader does not apply a separate timezone
// conversion.
type Window struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t falls within the window, inclusive of both
// endpoints.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Since) && !t.After(w.Until)
}
