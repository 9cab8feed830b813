package domain

import (
	"errors"
	"time"
)

// ErrEmptyDayBucket is returned when a DayBucket is constructed with no
// commits.
var ErrEmptyDayBucket = errors.New("day bucket must contain at least one commit")

// DayBucket groups every Commit whose authored timestamp falls on the same
// repository-local calendar date.
type DayBucket struct {
	Date           time.Time // truncated to the calendar date, repository-local
	Commits        []Commit
	DayStartParent *string // first-parent of the day's earliest commit, nil if it has none
	DayEnd         string  // hash of the day's latest commit
}

// NewDayBucket validates and constructs a DayBucket. commits must already be
// ordered by authored timestamp ascending; dayStartParent is nil when the
// earliest commit is the repository root.
func NewDayBucket(date time.Time, commits []Commit, dayStartParent *string) (DayBucket, error) {
	if len(commits) == 0 {
		return DayBucket{}, &ValidationError{Field: "commits", Err: ErrEmptyDayBucket}
	}

	return DayBucket{
		Date:           date,
		Commits:        commits,
		DayStartParent: dayStartParent,
		DayEnd:         commits[len(commits)-1].Hash,
	}, nil
}

// ErrEmptyNarrative is returned when a DailySynthesis is constructed with a
// blank narrative.
var ErrEmptyNarrative = errors.New("narrative must not be empty")

// DailySynthesis is the narrative and deduplicated Change set produced for
// one DayBucket.
type DailySynthesis struct {
	Date     time.Time
	Narrative string
	Changes  []Change
}

// NewDailySynthesis validates, deduplicates by (summary, category), and
// constructs a DailySynthesis.
func NewDailySynthesis(date time.Time, narrative string, changes []Change) (DailySynthesis, error) {
	if narrative == "" {
		return DailySynthesis{}, &ValidationError{Field: "narrative", Err: ErrEmptyNarrative}
	}

	return DailySynthesis{
		Date:      date,
		Narrative: narrative,
		Changes:   DedupChanges(changes),
	}, nil
}

// DedupChanges removes duplicate Change records, keyed by the pair
// (Summary, Category), preserving first-seen order.
func DedupChanges(changes []Change) []Change {
	seen := make(map[changeKey]bool, len(changes))
	out := make([]Change, 0, len(changes))

	for _, c := range changes {
		k := changeKey{summary: c.Summary, category: c.Category}
		if seen[k] {
			continue
		}

		seen[k] = true

		out = append(out, c)
	}

	return out
}

type changeKey struct {
	summary  string
	category Category
}

// ErrEmptyWeekBucket is returned when a WeekBucket is constructed with no
// days.
var ErrEmptyWeekBucket = errors.New("week bucket must contain at least one day")

// ErrWeekBucketTooLong is returned when a WeekBucket spans more than 7
// calendar days.
var ErrWeekBucketTooLong = errors.New("week bucket must not span more than 7 calendar days")

// WeekBucket is an ordered, contiguous range of DayBuckets spanning at most
// 7 calendar days.
type WeekBucket struct {
	Days []DayBucket
}

// NewWeekBucket validates and constructs a WeekBucket. days must already be
// ordered by date ascending and contiguous.
func NewWeekBucket(days []DayBucket) (WeekBucket, error) {
	if len(days) == 0 {
		return WeekBucket{}, &ValidationError{Field: "days", Err: ErrEmptyWeekBucket}
	}

	span := days[len(days)-1].Date.Sub(days[0].Date)
	if span > 6*24*time.Hour {
		return WeekBucket{}, &ValidationError{Field: "days", Err: ErrWeekBucketTooLong}
	}

	return WeekBucket{Days: days}, nil
}

// Label returns the canonical week label used to key ArtifactState
// sections: "week-of-<ISO date>" of the bucket's first day.
func (w WeekBucket) Label() string {
	return "week-of-" + w.Days[0].Date.Format("2006-01-02")
}
