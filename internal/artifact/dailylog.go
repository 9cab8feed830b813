package artifact

import (
	"sort"
	"strings"

	"github.com/bramblewood/historian/internal/domain"
)

const dailyLogHeadingPrefix = "## "

// mergeDailyLog rewrites m.paths.DailyLog: every ISO-date section already
// on disk keeps its body verbatim unless the current run supplies a
// DailySynthesis for that date, in which case the new body (narrative plus
// a bulleted list of that day's Changes) replaces it. Sections render in
// descending date order, newest first.
func (m *Merger) mergeDailyLog(weeks []domain.WeekArtifact) error {
	existing, err := readExisting(m.paths.DailyLog)
	if err != nil {
		return err
	}

	bodies := make(map[string]string)

	var order []string

	for _, sec := range parseHeadingSections(existing, dailyLogHeadingPrefix) {
		if _, seen := bodies[sec.label]; !seen {
			order = append(order, sec.label)
		}

		bodies[sec.label] = sec.body
	}

	for _, w := range weeks {
		for _, day := range w.Daily {
			label := day.Date.Format("2006-01-02")
			if _, seen := bodies[label]; !seen {
				order = append(order, label)
			}

			bodies[label] = renderDailyBody(day)
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(order)))

	var b strings.Builder

	for _, label := range order {
		b.WriteString(dailyLogHeadingPrefix)
		b.WriteString(label)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(bodies[label], "\n"))
		b.WriteString("\n\n")
	}

	out := append(trimTrailingBlankLines([]byte(b.String())), '\n')

	return writeAtomic(m.paths.DailyLog, out)
}

// renderDailyBody renders a DailySynthesis as its narrative followed by a
// hyphen-bulleted list of its Changes, when any are present.
func renderDailyBody(day domain.DailySynthesis) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(day.Narrative))
	b.WriteString("\n")

	if len(day.Changes) > 0 {
		b.WriteString("\n")

		for _, c := range day.Changes {
			b.WriteString(bulletPrefix)
			b.WriteString(c.Summary)
			b.WriteString("\n")
		}
	}

	return b.String()
}
