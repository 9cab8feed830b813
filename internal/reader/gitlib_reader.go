package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/bramblewood/historian/internal/domain"
	"github.com/bramblewood/historian/pkg/gitlib"
)

// GitlibReader implements Reader over a pkg/gitlib.Repository. Each method
// walks the repository's full commit history within the requested window on
// every call — there is no persistent cursor — so two calls with the same
// window produce identical sequences, satisfying the restartable contract.
type GitlibReader struct {
	repo     *gitlib.Repository
	location *time.Location
}

// NewGitlibReader constructs a GitlibReader. location is the repository-local
// timezone used to compute calendar-date bucketing; a nil location defaults
// to UTC.
func NewGitlibReader(repo *gitlib.Repository, location *time.Location) *GitlibReader {
	if location == nil {
		location = time.UTC
	}

	return &GitlibReader{repo: repo, location: location}
}

// CommitsIn implements Reader.
func (r *GitlibReader) CommitsIn(ctx context.Context, window Window) <-chan CommitResult {
	out := make(chan CommitResult)

	go func() {
		defer close(out)

		commits, err := r.loadCommits(ctx, window, "commits_in")
		if err != nil {
			send(ctx, out, CommitResult{Err: err})

			return
		}

		for _, c := range commits {
			if !send(ctx, out, CommitResult{Commit: c}) {
				return
			}
		}
	}()

	return out
}

// DailyDiffs implements Reader.
func (r *GitlibReader) DailyDiffs(ctx context.Context, window Window) <-chan DailyDiffResult {
	out := make(chan DailyDiffResult)

	go func() {
		defer close(out)

		commits, err := r.loadCommits(ctx, window, "daily_diffs")
		if err != nil {
			send(ctx, out, DailyDiffResult{Err: err})

			return
		}

		for _, day := range groupByCalendarDate(commits, r.location) {
			dd, err := r.dailyDiff(ctx, day)
			if err != nil {
				send(ctx, out, DailyDiffResult{Err: &RepositoryError{Op: "daily_diffs", Err: err}})

				return
			}

			if !send(ctx, out, DailyDiffResult{DailyDiff: dd}) {
				return
			}
		}
	}()

	return out
}

// WeeklyDiffs implements Reader.
func (r *GitlibReader) WeeklyDiffs(ctx context.Context, window Window) <-chan WeeklyDiffResult {
	out := make(chan WeeklyDiffResult)

	go func() {
		defer close(out)

		commits, err := r.loadCommits(ctx, window, "weekly_diffs")
		if err != nil {
			send(ctx, out, WeeklyDiffResult{Err: err})

			return
		}

		days := groupByCalendarDate(commits, r.location)

		for _, week := range chunkWeeks(days) {
			wd, err := r.weeklyDiff(ctx, week)
			if err != nil {
				send(ctx, out, WeeklyDiffResult{Err: &RepositoryError{Op: "weekly_diffs", Err: err}})

				return
			}

			if !send(ctx, out, WeeklyDiffResult{WeeklyDiff: wd}) {
				return
			}
		}
	}()

	return out
}

// loadCommits walks the repository from HEAD back to window.Since, keeps
// only commits whose authored timestamp falls in window, and returns them
// in ascending authored-timestamp order (the walk itself yields newest
// first).
func (r *GitlibReader) loadCommits(ctx context.Context, window Window, op string) ([]domain.Commit, error) {
	iter, err := r.repo.Log(&gitlib.LogOptions{Since: &window.Since})
	if err != nil {
		return nil, &RepositoryError{Op: op, Err: err}
	}
	defer iter.Close()

	var commits []domain.Commit

	for {
		select {
		case <-ctx.Done():
			return nil, &RepositoryError{Op: op, Err: ctx.Err()}
		default:
		}

		native, nextErr := iter.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		if nextErr != nil {
			return nil, &RepositoryError{Op: op, Err: nextErr}
		}

		authoredAt := native.Author().When
		if !window.Contains(authoredAt) {
			native.Free()

			continue
		}

		dc, buildErr := r.buildDomainCommit(ctx, native)
		native.Free()

		if buildErr != nil {
			return nil, &RepositoryError{Op: op, Err: buildErr}
		}

		commits = append(commits, dc)
	}

	sort.Slice(commits, func(i, j int) bool {
		return commits[i].AuthoredAt.Before(commits[j].AuthoredAt)
	})

	return commits, nil
}

func (r *GitlibReader) buildDomainCommit(ctx context.Context, native *gitlib.Commit) (domain.Commit, error) {
	hash := native.Hash().String()

	diff, _, err := r.diffBetween(ctx, hash, hash)
	if err != nil {
		return domain.Commit{}, fmt.Errorf("diff commit %s: %w", hash, err)
	}
	defer diff.Free()

	paths, err := diff.ChangedPaths()
	if err != nil {
		return domain.Commit{}, fmt.Errorf("changed paths for %s: %w", hash, err)
	}

	diffText, err := diff.PatchText()
	if err != nil {
		return domain.Commit{}, fmt.Errorf("patch text for %s: %w", hash, err)
	}

	author := native.Author()

	commit, err := domain.NewCommit(
		hash,
		authorIdentity(author),
		author.When,
		native.Summary(),
		native.Body(),
		paths,
		diffText,
	)
	if err != nil {
		return domain.Commit{}, err
	}

	return commit, nil
}

func (r *GitlibReader) dailyDiff(ctx context.Context, day dayGroup) (DailyDiff, error) {
	startHash := day.commits[0].Hash
	endHash := day.commits[len(day.commits)-1].Hash

	diff, parentHash, err := r.diffBetween(ctx, startHash, endHash)
	if err != nil {
		return DailyDiff{}, fmt.Errorf("diff day %s: %w", day.date.Format("2006-01-02"), err)
	}
	defer diff.Free()

	text, err := diff.PatchText()
	if err != nil {
		return DailyDiff{}, fmt.Errorf("patch text for day %s: %w", day.date.Format("2006-01-02"), err)
	}

	return DailyDiff{
		Date:           day.date,
		DayStartParent: parentHash,
		DayEnd:         endHash,
		Diff:           text,
	}, nil
}

func (r *GitlibReader) weeklyDiff(ctx context.Context, week []dayGroup) (WeeklyDiff, error) {
	firstDay := week[0]
	lastDay := week[len(week)-1]

	startHash := firstDay.commits[0].Hash
	endHash := lastDay.commits[len(lastDay.commits)-1].Hash

	label := "week-of-" + firstDay.date.Format("2006-01-02")

	diff, _, err := r.diffBetween(ctx, startHash, endHash)
	if err != nil {
		return WeeklyDiff{}, fmt.Errorf("diff %s: %w", label, err)
	}
	defer diff.Free()

	text, err := diff.PatchText()
	if err != nil {
		return WeeklyDiff{}, fmt.Errorf("patch text for %s: %w", label, err)
	}

	return WeeklyDiff{Label: label, Diff: text}, nil
}

// diffBetween returns the diff between startHash's first-parent tree and
// endHash's tree (the empty tree if startHash is a root commit), along with
// startHash's parent's hash (nil if startHash is a root commit). The
// returned Diff must be freed by the caller.
func (r *GitlibReader) diffBetween(ctx context.Context, startHash, endHash string) (*gitlib.Diff, *string, error) {
	startCommit, err := r.repo.LookupCommit(ctx, gitlib.NewHash(startHash))
	if err != nil {
		return nil, nil, fmt.Errorf("lookup %s: %w", startHash, err)
	}
	defer startCommit.Free()

	parent, err := startCommit.FirstParent()
	if err != nil {
		return nil, nil, fmt.Errorf("first parent of %s: %w", startHash, err)
	}

	var (
		parentTree    *gitlib.Tree
		parentHashPtr *string
	)

	if parent != nil {
		defer parent.Free()

		parentTree, err = parent.Tree()
		if err != nil {
			return nil, nil, fmt.Errorf("tree of parent of %s: %w", startHash, err)
		}
		defer parentTree.Free()

		ph := parent.Hash().String()
		parentHashPtr = &ph
	}

	endCommit, err := r.repo.LookupCommit(ctx, gitlib.NewHash(endHash))
	if err != nil {
		return nil, nil, fmt.Errorf("lookup %s: %w", endHash, err)
	}
	defer endCommit.Free()

	endTree, err := endCommit.Tree()
	if err != nil {
		return nil, nil, fmt.Errorf("tree of %s: %w", endHash, err)
	}
	defer endTree.Free()

	diff, err := r.repo.DiffTreeToTree(parentTree, endTree)
	if err != nil {
		return nil, nil, fmt.Errorf("diff trees %s..%s: %w", startHash, endHash, err)
	}

	return diff, parentHashPtr, nil
}

func authorIdentity(sig gitlib.Signature) string {
	if sig.Email == "" {
		return sig.Name
	}

	return sig.Name + " <" + sig.Email + ">"
}

type dayGroup struct {
	date    time.Time
	commits []domain.Commit
}

// groupByCalendarDate partitions commits (already ascending by authored
// timestamp) into contiguous runs sharing the same repository-local
// calendar date.
func groupByCalendarDate(commits []domain.Commit, loc *time.Location) []dayGroup {
	var groups []dayGroup

	for _, c := range commits {
		date := truncateToDate(c.AuthoredAt, loc)

		if n := len(groups); n > 0 && groups[n-1].date.Equal(date) {
			groups[n-1].commits = append(groups[n-1].commits, c)

			continue
		}

		groups = append(groups, dayGroup{date: date, commits: []domain.Commit{c}})
	}

	return groups
}

func truncateToDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// chunkWeeks groups consecutive day buckets into WeekBucket-aligned chunks
// of at most 7 calendar days span, matching the grouping the Orchestrator
// applies when constructing domain.WeekBucket values from the same days.
func chunkWeeks(days []dayGroup) [][]dayGroup {
	var weeks [][]dayGroup

	var current []dayGroup

	for _, day := range days {
		if len(current) == 0 {
			current = []dayGroup{day}

			continue
		}

		if day.date.Sub(current[0].date) > 6*24*time.Hour {
			weeks = append(weeks, current)
			current = []dayGroup{day}

			continue
		}

		current = append(current, day)
	}

	if len(current) > 0 {
		weeks = append(weeks, current)
	}

	return weeks
}

// send delivers v on out. A receiver that is already waiting gets v even if
// ctx is cancelled; otherwise send waits for a receiver and aborts if ctx is
// cancelled first. It reports whether the send succeeded.
func send[T any](ctx context.Context, out chan<- T, v T) bool {
	select {
	case out <- v:
		return true
	default:
	}

	select {
	case out <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
