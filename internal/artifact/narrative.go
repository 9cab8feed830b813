package artifact

import (
	"sort"
	"strings"

	"github.com/bramblewood/historian/internal/domain"
)

const narrativeHeadingPrefix = "## "

// mergeNarrative rewrites m.paths.Narrative: every week label already
// present on disk keeps its body verbatim unless weeks supplies a new body
// for that label, in which case the new body replaces it. Sections are
// rendered in descending label order, newest week first, since
// domain.WeekBucket labels are ISO-date-prefixed and sort correctly as
// plain strings.
func (m *Merger) mergeNarrative(weeks []domain.WeekArtifact) error {
	existing, err := readExisting(m.paths.Narrative)
	if err != nil {
		return err
	}

	bodies := make(map[string]string)

	var order []string

	for _, sec := range parseHeadingSections(existing, narrativeHeadingPrefix) {
		if _, seen := bodies[sec.label]; !seen {
			order = append(order, sec.label)
		}

		bodies[sec.label] = sec.body
	}

	for _, w := range weeks {
		if _, seen := bodies[w.Label]; !seen {
			order = append(order, w.Label)
		}

		bodies[w.Label] = strings.TrimSpace(w.Narrative) + "\n"
	}

	sort.Sort(sort.Reverse(sort.StringSlice(order)))

	var b strings.Builder

	for _, label := range order {
		b.WriteString(narrativeHeadingPrefix)
		b.WriteString(label)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(bodies[label], "\n"))
		b.WriteString("\n\n")
	}

	out := append(trimTrailingBlankLines([]byte(b.String())), '\n')

	return writeAtomic(m.paths.Narrative, out)
}
