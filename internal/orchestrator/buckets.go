package orchestrator

import (
	"time"

	"github.com/bramblewood/historian/internal/domain"
	"github.com/bramblewood/historian/internal/reader"
)

const dateLayout = "2006-01-02"

// commitDayGroup is the orchestrator's own calendar-date grouping of
// commits, built independently of reader.GitlibReader's private grouping so
// that this package has no dependency on reader internals beyond the
// exported Reader interface and WeekBoundaries.
type commitDayGroup struct {
	date    time.Time
	commits []domain.Commit
}

func groupCommitsByDate(commits []domain.Commit, loc *time.Location) []commitDayGroup {
	var groups []commitDayGroup

	for _, c := range commits {
		date := truncateToDate(c.AuthoredAt, loc)

		if n := len(groups); n > 0 && groups[n-1].date.Equal(date) {
			groups[n-1].commits = append(groups[n-1].commits, c)

			continue
		}

		groups = append(groups, commitDayGroup{date: date, commits: []domain.Commit{c}})
	}

	return groups
}

func truncateToDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// buildDayBuckets groups commits (ascending by authored timestamp) into
// domain.DayBucket values, one per calendar date with commits, attaching
// the DayStartParent the Reader computed for that date's DailyDiff.
func buildDayBuckets(commits []domain.Commit, dailyDiffs []reader.DailyDiff, loc *time.Location) ([]domain.DayBucket, error) {
	parentByDate := make(map[string]*string, len(dailyDiffs))
	for _, dd := range dailyDiffs {
		parentByDate[dd.Date.Format(dateLayout)] = dd.DayStartParent
	}

	groups := groupCommitsByDate(commits, loc)
	buckets := make([]domain.DayBucket, 0, len(groups))

	for _, g := range groups {
		bucket, err := domain.NewDayBucket(g.date, g.commits, parentByDate[g.date.Format(dateLayout)])
		if err != nil {
			return nil, err
		}

		buckets = append(buckets, bucket)
	}

	return buckets, nil
}

// buildWeekBuckets chunks dayBuckets into domain.WeekBucket values using
// reader.WeekBoundaries, so the resulting Label() values line up exactly
// with the labels the Reader produced for its WeeklyDiffs over the same
// window.
func buildWeekBuckets(days []domain.DayBucket) ([]domain.WeekBucket, error) {
	dates := make([]time.Time, len(days))
	for i, d := range days {
		dates[i] = d.Date
	}

	byDate := make(map[string]domain.DayBucket, len(days))
	for _, d := range days {
		byDate[d.Date.Format(dateLayout)] = d
	}

	weeks := make([]domain.WeekBucket, 0)

	for _, chunk := range reader.WeekBoundaries(dates) {
		chunkDays := make([]domain.DayBucket, len(chunk))
		for i, date := range chunk {
			chunkDays[i] = byDate[date.Format(dateLayout)]
		}

		wb, err := domain.NewWeekBucket(chunkDays)
		if err != nil {
			return nil, err
		}

		weeks = append(weeks, wb)
	}

	return weeks, nil
}

func drainCommits(ch <-chan reader.CommitResult) ([]domain.Commit, error) {
	var out []domain.Commit

	for res := range ch {
		if res.Err != nil {
			return nil, res.Err
		}

		out = append(out, res.Commit)
	}

	return out, nil
}

func drainDailyDiffs(ch <-chan reader.DailyDiffResult) ([]reader.DailyDiff, error) {
	var out []reader.DailyDiff

	for res := range ch {
		if res.Err != nil {
			return nil, res.Err
		}

		out = append(out, res.DailyDiff)
	}

	return out, nil
}

func drainWeeklyDiffs(ch <-chan reader.WeeklyDiffResult) (map[string]string, error) {
	out := make(map[string]string)

	for res := range ch {
		if res.Err != nil {
			return nil, res.Err
		}

		out[res.WeeklyDiff.Label] = res.WeeklyDiff.Diff
	}

	return out, nil
}
