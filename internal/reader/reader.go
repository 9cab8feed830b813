package reader

import (
	"context"
	"time"

	"github.com/bramblewood/historian/internal/domain"
)

// DailyDiff is one calendar date's net change: the diff between the parent
// of the date's first commit and the date's last commit, computed via
// first-parent ancestry.
type DailyDiff struct {
	Date           time.Time
	DayStartParent *string
	DayEnd         string
	Diff           string
}

// WeeklyDiff is one WeekBucket's net change: the diff between the parent of
// the week's first commit and the week's last commit.
type WeeklyDiff struct {
	Label string
	Diff  string
}

// CommitResult carries either a Commit or a terminal error encountered
// while producing the commits_in sequence.
type CommitResult struct {
	Commit domain.Commit
	Err    error
}

// DailyDiffResult carries either a DailyDiff or a terminal error.
type DailyDiffResult struct {
	DailyDiff DailyDiff
	Err       error
}

// WeeklyDiffResult carries either a WeeklyDiff or a terminal error.
type WeeklyDiffResult struct {
	WeeklyDiff WeeklyDiff
	Err        error
}

// Reader is the three-lens view of repository history the Orchestrator
// builds its buckets and prompts from. Each method returns a fresh,
// ordered channel per call — calling a method again replays the sequence
// from the start, satisfying the "restartable" contract without requiring
// callers to buffer results themselves. A send of a result with a non-nil
// Err is always the last send on that channel; the channel is closed
// immediately after. Callers must drain or abandon the channel via ctx
// cancellation to avoid leaking the producing goroutine.
type Reader interface {
	// CommitsIn yields every commit whose authored timestamp falls within
	// window, in ascending authored-timestamp order.
	CommitsIn(ctx context.Context, window Window) <-chan CommitResult

	// DailyDiffs yields one element per calendar date in window that
	// contains at least one commit, in ascending date order. A day with no
	// commits is skipped, not emitted empty.
	DailyDiffs(ctx context.Context, window Window) <-chan DailyDiffResult

	// WeeklyDiffs yields one element per WeekBucket, in ascending order.
	// Buckets are built only from dates that contain a commit: starting at
	// the earliest such date, consecutive dates are grouped until the next
	// one lies 7 or more days after the bucket's first date.
	WeeklyDiffs(ctx context.Context, window Window) <-chan WeeklyDiffResult
}
