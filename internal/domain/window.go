package domain

import (
	"errors"
	"time"
)

// ErrInvertedWindow is returned when an AnalysisWindow's until precedes its
// since.
var ErrInvertedWindow = errors.New("until must not precede since")

// AnalysisWindow is the inclusive time range an Orchestrator run covers,
// tiled by an ordered set of WeekBuckets.
type AnalysisWindow struct {
	Since       time.Time
	Until       time.Time
	WeekBuckets []WeekBucket
}

// NewAnalysisWindow validates and constructs an AnalysisWindow. weekBuckets
// must already tile [since, until] with no gaps or overlaps.
func NewAnalysisWindow(since, until time.Time, weekBuckets []WeekBucket) (AnalysisWindow, error) {
	if until.Before(since) {
		return AnalysisWindow{}, &ValidationError{Field: "until", Err: ErrInvertedWindow}
	}

	return AnalysisWindow{Since: since, Until: until, WeekBuckets: weekBuckets}, nil
}

// Empty reports whether the window contains no WeekBuckets, i.e. the
// repository had no commits in [Since, Until].
func (w AnalysisWindow) Empty() bool {
	return len(w.WeekBuckets) == 0
}
