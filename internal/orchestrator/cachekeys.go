package orchestrator

import (
	"github.com/bramblewood/historian/internal/domain"
	"github.com/bramblewood/historian/internal/llm"
	"github.com/bramblewood/historian/internal/prompt"
	"github.com/bramblewood/historian/internal/cachestore"
)

// commitCacheKey derives the namespace-commit cache key from the exact
// inputs that determine the commit-tier prompt: subject, body, and full
// (pre-chunking) diff text. The chunking performed by the Diff Fitter is a
// budget-driven implementation detail, not semantic input, so it is not
// part of the key.
func commitCacheKey(model string, c domain.Commit) ([]byte, error) {
	input := struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
		Diff    string `json:"diff"`
	}{Subject: c.Subject, Body: c.Body, Diff: c.Diff}

	return cachestore.Key(domain.NamespaceCommit, prompt.Version, model, input)
}

// dailyCacheKey derives the namespace-daily cache key from the ordered
// commit analyses of the day (exactly what internal/prompt.BuildDaily
// renders) plus the day's net diff text.
func dailyCacheKey(model string, analyses []domain.CommitAnalysis, dailyDiff string) ([]byte, error) {
	type analysisInput struct {
		Trivial bool           `json:"trivial"`
		Changes []domain.Change `json:"changes"`
	}

	inputs := make([]analysisInput, len(analyses))
	for i, a := range analyses {
		inputs[i] = analysisInput{Trivial: a.Trivial, Changes: a.Changes}
	}

	input := struct {
		Analyses []analysisInput `json:"analyses"`
		DailyDiff string          `json:"daily_diff"`
	}{Analyses: inputs, DailyDiff: dailyDiff}

	return cachestore.Key(domain.NamespaceDaily, prompt.Version, model, input)
}

// weeklyNarrativeCacheKey derives the namespace-weekly-narrative cache key
// from the ordered daily syntheses of the week plus the week's net diff
// text, matching internal/prompt.BuildWeeklyNarrative's inputs exactly.
func weeklyNarrativeCacheKey(model string, daily []domain.DailySynthesis, weeklyDiff string) ([]byte, error) {
	type dayInput struct {
		Date      string `json:"date"`
		Narrative string `json:"narrative"`
	}

	inputs := make([]dayInput, len(daily))
	for i, d := range daily {
		inputs[i] = dayInput{Date: d.Date.Format("2006-01-02"), Narrative: d.Narrative}
	}

	input := struct {
		Daily      []dayInput `json:"daily"`
		WeeklyDiff string     `json:"weekly_diff"`
	}{Daily: inputs, WeeklyDiff: weeklyDiff}

	return cachestore.Key(domain.NamespaceWeeklyNarrative, prompt.Version, model, input)
}

// tierModel resolves the configured model identifier for tier, used as a
// component of every cache key so a model change invalidates stale
// entries.
func tierModel(cfg llm.Config, tier llm.Tier) string {
	return cfg.ForTier(tier).Model
}
