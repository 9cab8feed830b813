package orchestrator

import (
	"fmt"
	"sync"
)

// Diagnostic records a single recoverable failure encountered during a run:
// a commit that fell back to a placeholder analysis, a day or week that
// degraded to a synthesis-unavailable narrative, or a cache I/O failure
// that was treated as a miss. Run returns the full set so callers can
// surface or persist them as a sidecar without the Orchestrator needing an
// opinion on where diagnostics go.
type Diagnostic struct {
	Kind       string // "LLMError" (commit placeholder), "daily_degraded", "weekly_degraded", "cache_io", "unknown_category"
	Tier       string // "commit", "daily", "weekly-narrative"
	Identifier string // commit short hash, ISO date, or week label
	Cause      string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s[%s] %s: %s", d.Kind, d.Tier, d.Identifier, d.Cause)
}

// diagnosticSink collects Diagnostics from concurrent commit/daily-tier
// goroutines under a single mutex; the volume of diagnostics is bounded by
// the number of commits/buckets in a run, so a plain mutex outperforms
// anything fancier here.
type diagnosticSink struct {
	mu   sync.Mutex
	list []Diagnostic
}

func (s *diagnosticSink) record(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list = append(s.list, d)
}

func (s *diagnosticSink) drain() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.list
}
