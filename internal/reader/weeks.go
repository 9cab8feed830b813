package reader

import "time"

// WeekBoundaries partitions an ascending, distinct sequence of calendar
// dates into contiguous chunks spanning at most 7 calendar days each, using
// the same greedy grouping GitlibReader.WeeklyDiffs uses to label its
// output. The Orchestrator chunks DayBucket dates with this function before
// constructing domain.WeekBucket values, so its buckets line up with the
// WeeklyDiff labels the Reader produced for the same window.
func WeekBoundaries(dates []time.Time) [][]time.Time {
	groups := make([]dayGroup, len(dates))
	for i, d := range dates {
		groups[i] = dayGroup{date: d}
	}

	chunks := chunkWeeks(groups)
	out := make([][]time.Time, len(chunks))

	for i, chunk := range chunks {
		chunkDates := make([]time.Time, len(chunk))
		for j, g := range chunk {
			chunkDates[j] = g.date
		}

		out[i] = chunkDates
	}

	return out
}
