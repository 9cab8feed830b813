// Package prompt deterministically renders the prompt text sent to the LLM
// Gateway for each pipeline tier. Rendering is pure string assembly: given
// identical structured input and the same Version, Build* always produces
// byte-identical output, with no timestamps or randomness.
package prompt

import (
	"fmt"
	"strings"

	"github.com/bramblewood/historian/internal/domain"
)

// Version tags the prompt templates below. It is a component of every
// cache key (internal/cachestore derives keys from namespace, Version, model
// identifier, and canonicalized structured input) so that a template
// change invalidates stale cache entries instead of silently reusing them.
const Version = "historian-prompt-v1"

// BuildCommit renders the commit-tier prompt: input is a single commit's
// subject, body, and diff text (already fit to budget by the Diff
// Fitter); output contract requested from the LLM is a JSON object with
// `changes` ({summary, category} list) and `trivial` (bool).
func BuildCommit(subject, body, diff string) string {
	var sb strings.Builder

	sb.WriteString("You are analyzing a single git commit for a changelog.\n\n")
	sb.WriteString("Subject: ")
	sb.WriteString(subject)
	sb.WriteString("\n")

	if body != "" {
		sb.WriteString("Body:\n")
		sb.WriteString(body)
		sb.WriteString("\n")
	}

	sb.WriteString("\nDiff:\n")
	sb.WriteString(diff)
	sb.WriteString("\n\n")

	writeCategoryList(&sb)

	sb.WriteString("\nRespond with ONLY a JSON object of the form:\n")
	sb.WriteString(`{"changes": [{"summary": "...", "category": "..."}], "trivial": false}`)
	sb.WriteString("\n")
	sb.WriteString("Set \"trivial\" to true only when the commit has no changelog-worthy effect ")
	sb.WriteString("(formatting, typo fixes, CI tweaks with no user-visible impact).\n")

	return sb.String()
}

// BuildDaily renders the daily-tier prompt: input is the ordered list of a
// day's CommitAnalysis results plus the day's net diff. Output contract is
// a JSON object with `narrative` (text) and `changes` (deduplicated
// {summary, category} list).
func BuildDaily(analyses []domain.CommitAnalysis, dailyDiff string) string {
	var sb strings.Builder

	sb.WriteString("You are synthesizing one day of development activity into a short narrative.\n\n")
	sb.WriteString("Commit-level analyses for the day:\n")

	for i, a := range analyses {
		fmt.Fprintf(&sb, "%d. trivial=%t\n", i+1, a.Trivial)

		for _, c := range a.Changes {
			fmt.Fprintf(&sb, "   - [%s] %s\n", c.Category, c.Summary)
		}
	}

	sb.WriteString("\nNet diff for the day:\n")
	sb.WriteString(dailyDiff)
	sb.WriteString("\n\n")

	sb.WriteString("Respond with ONLY a JSON object of the form:\n")
	sb.WriteString(`{"narrative": "...", "changes": [{"summary": "...", "category": "..."}]}`)
	sb.WriteString("\n")

	return sb.String()
}

// BuildWeeklyNarrative renders the weekly-narrative-tier prompt: input is
// the ordered list of a week's DailySynthesis records plus the week's net
// diff. Output is narrative text, not JSON.
func BuildWeeklyNarrative(daily []domain.DailySynthesis, weeklyDiff string) string {
	var sb strings.Builder

	sb.WriteString("You are writing a stakeholder-facing summary of one week of development.\n\n")
	sb.WriteString("Daily syntheses for the week:\n")

	for _, d := range daily {
		fmt.Fprintf(&sb, "- %s: %s\n", d.Date.Format("2006-01-02"), d.Narrative)
	}

	sb.WriteString("\nNet diff for the week:\n")
	sb.WriteString(weeklyDiff)
	sb.WriteString("\n\n")
	sb.WriteString("Respond with plain narrative text only, no JSON, no Markdown headings.\n")

	return sb.String()
}

// BuildWeeklyChangelog renders the weekly-changelog-tier prompt defined by
// the Prompt Builder contract: input is the union of all Change records in
// the week, output is a JSON object mapping category name to a list of
// summary strings. The Orchestrator does not invoke this prompt in the
// normal run path — the weekly changelog fragment is produced by pure
// aggregation of commit-tier Change records instead, so that no
// commit-level change can be dropped by a fresh extraction. It is exposed
// for completeness with the component contract and for diagnostic/preview
// use.
func BuildWeeklyChangelog(changes []domain.Change) string {
	var sb strings.Builder

	sb.WriteString("You are grouping a week's changes by category for a changelog.\n\n")
	sb.WriteString("Changes:\n")

	for _, c := range changes {
		fmt.Fprintf(&sb, "- [%s] %s\n", c.Category, c.Summary)
	}

	sb.WriteString("\nRespond with ONLY a JSON object mapping category name to a list of summary strings, e.g.\n")
	sb.WriteString(`{"Added": ["...", "..."], "Fixed": ["..."]}`)
	sb.WriteString("\n")

	return sb.String()
}

func writeCategoryList(sb *strings.Builder) {
	sb.WriteString("Categories: ")

	names := make([]string, 0, len(domain.CategoryOrder))
	for _, c := range domain.CategoryOrder {
		names = append(names, string(c))
	}

	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("\n")
}
