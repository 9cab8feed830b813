package orchestrator

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/bramblewood/historian/internal/decode"
	"github.com/bramblewood/historian/internal/domain"
	"github.com/bramblewood/historian/internal/llm"
	"github.com/bramblewood/historian/internal/prompt"
)

// runDailyTier synthesizes every DayBucket in parallel under a semaphore of
// width Limits.Day, returning one DailySynthesis per bucket in the same
// order as buckets. analysesByHash must already hold every bucket's
// commits' CommitAnalysis (i.e. the commit tier has fully completed).
func (o *Orchestrator) runDailyTier(
	ctx context.Context,
	buckets []domain.DayBucket,
	analysesByHash map[string]domain.CommitAnalysis,
	dailyDiffByDate map[string]string,
) []domain.DailySynthesis {
	syntheses := make([]domain.DailySynthesis, len(buckets))

	var g errgroup.Group

	g.SetLimit(o.limits.Day)

	for i, bucket := range buckets {
		i, bucket := i, bucket

		g.Go(func() error {
			analyses := make([]domain.CommitAnalysis, len(bucket.Commits))
			for j, c := range bucket.Commits {
				analyses[j] = analysesByHash[c.Hash]
			}

			diffText := dailyDiffByDate[bucket.Date.Format(dateLayout)]

			syntheses[i] = o.synthesizeDay(ctx, bucket, analyses, diffText)

			return nil
		})
	}

	_ = g.Wait()

	return syntheses
}

func (o *Orchestrator) synthesizeDay(
	ctx context.Context,
	bucket domain.DayBucket,
	analyses []domain.CommitAnalysis,
	dailyDiff string,
) domain.DailySynthesis {
	label := bucket.Date.Format(dateLayout)
	model := tierModel(o.deps.Models, llm.TierBalanced)

	key, keyErr := dailyCacheKey(model, analyses, dailyDiff)
	if keyErr == nil {
		if payload, found, err := o.deps.Cache.Get(domain.NamespaceDaily, key); err != nil {
			o.diagnostics.record(Diagnostic{Kind: "cache_io", Tier: "daily", Identifier: label, Cause: err.Error()})
		} else if found {
			var cached domain.DailySynthesis
			if unmarshalErr := json.Unmarshal(payload, &cached); unmarshalErr == nil {
				return cached
			}
		}
	}

	promptText := prompt.BuildDaily(analyses, dailyDiff)

	raw, err := o.deps.Gateway.Generate(ctx, llm.TierBalanced, promptText)
	if err != nil {
		return o.degradedDaily(bucket, analyses, label, "daily", err)
	}

	var resp dailyResponseWire

	if err := decode.Decode(raw, &resp); err != nil {
		return o.degradedDaily(bucket, analyses, label, "daily", err)
	}

	changes, coercions := toChanges(resp.Changes)
	for _, bad := range coercions {
		o.diagnostics.record(Diagnostic{Kind: "unknown_category", Tier: "daily", Identifier: label, Cause: "unrecognized category " + bad})
	}

	synthesis, err := domain.NewDailySynthesis(bucket.Date, resp.Narrative, changes)
	if err != nil {
		return o.degradedDaily(bucket, analyses, label, "daily", err)
	}

	if keyErr == nil {
		if payload, marshalErr := json.Marshal(synthesis); marshalErr == nil {
			if putErr := o.deps.Cache.Put(domain.NamespaceDaily, key, payload); putErr != nil {
				o.diagnostics.record(Diagnostic{Kind: "cache_io", Tier: "daily", Identifier: label, Cause: putErr.Error()})
			}
		}
	}

	return synthesis
}

// degradedDaily builds the fallback DailySynthesis recorded when the
// daily-tier LLM call or decode fails: a synthesis-unavailable narrative,
// with Changes still populated by aggregating the day's commit-tier
// analyses so that no commit-level change is lost (spec §4.7.3).
func (o *Orchestrator) degradedDaily(bucket domain.DayBucket, analyses []domain.CommitAnalysis, label, tier string, cause error) domain.DailySynthesis {
	o.diagnostics.record(Diagnostic{Kind: tier + "_degraded", Tier: tier, Identifier: label, Cause: cause.Error()})

	var aggregated []domain.Change
	for _, a := range analyses {
		aggregated = append(aggregated, a.Changes...)
	}

	synthesis, err := domain.NewDailySynthesis(bucket.Date, "synthesis unavailable for "+label, aggregated)
	if err != nil {
		// Narrative is a non-empty literal above, so NewDailySynthesis cannot
		// fail; this branch exists only to satisfy the error return.
		return domain.DailySynthesis{Date: bucket.Date, Narrative: "synthesis unavailable for " + label}
	}

	return synthesis
}
