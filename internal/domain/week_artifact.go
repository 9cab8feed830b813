package domain

import "errors"

// ErrEmptyWeekArtifactNarrative is returned when a WeekArtifact is
// constructed with a blank narrative.
var ErrEmptyWeekArtifactNarrative = errors.New("narrative must not be empty")

// ChangelogFragment groups Change records by Category for a single
// WeekArtifact. Iterate in CategoryOrder for deterministic output.
type ChangelogFragment map[Category][]Change

// WeekArtifact is the weekly tier's output: a stakeholder-facing narrative,
// a structured changelog fragment, and the ordered DailySynthesis records
// that compose the week.
type WeekArtifact struct {
	Label     string
	Narrative string
	Changelog ChangelogFragment
	Daily     []DailySynthesis
}

// NewWeekArtifact validates and constructs a WeekArtifact. The changelog
// fragment is built directly from the aggregation of every CommitAnalysis
// Change record in the week (spec §4.7 step 4), never from a fresh LLM
// extraction, so every commit-level change is guaranteed to survive into
// it.
func NewWeekArtifact(label, narrative string, changes []Change, daily []DailySynthesis) (WeekArtifact, error) {
	if narrative == "" {
		return WeekArtifact{}, &ValidationError{Field: "narrative", Err: ErrEmptyWeekArtifactNarrative}
	}

	fragment := make(ChangelogFragment)

	for _, c := range DedupChanges(changes) {
		fragment[c.Category] = append(fragment[c.Category], c)
	}

	return WeekArtifact{
		Label:     label,
		Narrative: narrative,
		Changelog: fragment,
		Daily:     daily,
	}, nil
}

// OrderedChangelog returns the fragment's Change lists in CategoryOrder,
// skipping empty categories.
func (w WeekArtifact) OrderedChangelog() []struct {
	Category Category
	Changes  []Change
} {
	out := make([]struct {
		Category Category
		Changes  []Change
	}, 0, len(CategoryOrder))

	for _, cat := range CategoryOrder {
		if changes, ok := w.Changelog[cat]; ok && len(changes) > 0 {
			out = append(out, struct {
				Category Category
				Changes  []Change
			}{Category: cat, Changes: changes})
		}
	}

	return out
}
