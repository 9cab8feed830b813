package orchestrator

import "github.com/bramblewood/historian/internal/domain"

// changeWire is the shape of a single change entry as rendered by the
// commit- and daily-tier prompts: {"summary": "...", "category": "..."}.
type changeWire struct {
	Summary  string `json:"summary"`
	Category string `json:"category"`
}

// commitResponseWire is the commit-tier LLM response contract (§4.7.1 step
// 2, internal/prompt.BuildCommit).
type commitResponseWire struct {
	Changes []changeWire `json:"changes"`
	Trivial bool         `json:"trivial"`
}

// dailyResponseWire is the daily-tier LLM response contract
// (internal/prompt.BuildDaily).
type dailyResponseWire struct {
	Narrative string       `json:"narrative"`
	Changes   []changeWire `json:"changes"`
}

// toChanges converts wire-format change entries to domain.Change, coercing
// unrecognized categories to domain.CategoryOther and reporting every
// coercion so the caller can record a diagnostic (spec §4.9).
func toChanges(wire []changeWire) (changes []domain.Change, coercions []string) {
	for _, w := range wire {
		category, ok := domain.ParseCategory(w.Category)
		if !ok {
			coercions = append(coercions, w.Category)
		}

		change, err := domain.NewChange(w.Summary, category)
		if err != nil {
			continue
		}

		changes = append(changes, change)
	}

	return changes, coercions
}
