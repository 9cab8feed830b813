package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/bramblewood/historian/internal/domain"
	"github.com/bramblewood/historian/internal/llm"
	"github.com/bramblewood/historian/internal/prompt"
)

// runWeeklyTier produces one WeekArtifact per WeekBucket, in parallel under
// a semaphore of width Limits.Week. The changelog fragment is built by
// domain.NewWeekArtifact directly from the week's aggregated commit-tier
// Change records, never from a fresh LLM extraction (spec §4.7.1 step 4);
// only the narrative is LLM-generated here.
func (o *Orchestrator) runWeeklyTier(
	ctx context.Context,
	weeks []domain.WeekBucket,
	dailyByDate map[string]domain.DailySynthesis,
	analysesByHash map[string]domain.CommitAnalysis,
	weeklyDiffByLabel map[string]string,
) ([]domain.WeekArtifact, error) {
	artifacts := make([]domain.WeekArtifact, len(weeks))
	errs := make([]error, len(weeks))

	var g errgroup.Group

	g.SetLimit(o.limits.Week)

	for i, wb := range weeks {
		i, wb := i, wb

		g.Go(func() error {
			label := wb.Label()

			daily := make([]domain.DailySynthesis, len(wb.Days))
			for j, day := range wb.Days {
				daily[j] = dailyByDate[day.Date.Format(dateLayout)]
			}

			var changes []domain.Change
			for _, day := range wb.Days {
				for _, c := range day.Commits {
					changes = append(changes, analysesByHash[c.Hash].Changes...)
				}
			}

			narrative := o.weeklyNarrative(ctx, label, daily, weeklyDiffByLabel[label])

			artifact, err := domain.NewWeekArtifact(label, narrative, changes, daily)
			if err != nil {
				errs[i] = err

				return nil
			}

			artifacts[i] = artifact

			return nil
		})
	}

	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return artifacts, nil
}

func (o *Orchestrator) weeklyNarrative(ctx context.Context, label string, daily []domain.DailySynthesis, weeklyDiff string) string {
	model := tierModel(o.deps.Models, llm.TierDeep)

	key, keyErr := weeklyNarrativeCacheKey(model, daily, weeklyDiff)
	if keyErr == nil {
		if payload, found, err := o.deps.Cache.Get(domain.NamespaceWeeklyNarrative, key); err != nil {
			o.diagnostics.record(Diagnostic{Kind: "cache_io", Tier: "weekly-narrative", Identifier: label, Cause: err.Error()})
		} else if found {
			return string(payload)
		}
	}

	promptText := prompt.BuildWeeklyNarrative(daily, weeklyDiff)

	narrative, err := o.deps.Gateway.Generate(ctx, llm.TierDeep, promptText)
	if err != nil {
		o.diagnostics.record(Diagnostic{Kind: "weekly_degraded", Tier: "weekly-narrative", Identifier: label, Cause: err.Error()})

		return "synthesis unavailable for " + label
	}

	if keyErr == nil {
		if putErr := o.deps.Cache.Put(domain.NamespaceWeeklyNarrative, key, []byte(narrative)); putErr != nil {
			o.diagnostics.record(Diagnostic{Kind: "cache_io", Tier: "weekly-narrative", Identifier: label, Cause: putErr.Error()})
		}
	}

	return narrative
}
