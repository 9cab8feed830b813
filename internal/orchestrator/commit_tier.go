package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bramblewood/historian/internal/decode"
	"github.com/bramblewood/historian/internal/difffit"
	"github.com/bramblewood/historian/internal/domain"
	"github.com/bramblewood/historian/internal/llm"
	"github.com/bramblewood/historian/internal/prompt"
)

// runCommitTier analyzes every commit in parallel under a semaphore of
// width Limits.Commit, returning one CommitAnalysis per commit in the same
// order as commits. A single commit's LLM or decode failure never fails
// the run: it is recorded as a diagnostic and replaced with
// domain.PlaceholderAnalysis (spec §4.7.1 step 2).
func (o *Orchestrator) runCommitTier(ctx context.Context, commits []domain.Commit) []domain.CommitAnalysis {
	analyses := make([]domain.CommitAnalysis, len(commits))

	var g errgroup.Group

	g.SetLimit(o.limits.Commit)

	for i, c := range commits {
		i, c := i, c

		g.Go(func() error {
			analysis, err := o.analyzeCommit(ctx, c)
			if err != nil {
				o.diagnostics.record(Diagnostic{
					Kind:       "LLMError",
					Tier:       "commit",
					Identifier: c.ShortHash(),
					Cause:      err.Error(),
				})

				analysis = domain.PlaceholderAnalysis(c)
			}

			analyses[i] = analysis

			return nil
		})
	}

	_ = g.Wait() // every goroutine above returns nil; Wait only reports ctx-independent bookkeeping errors

	return analyses
}

func (o *Orchestrator) analyzeCommit(ctx context.Context, c domain.Commit) (domain.CommitAnalysis, error) {
	model := tierModel(o.deps.Models, llm.TierFast)

	key, keyErr := commitCacheKey(model, c)
	if keyErr == nil {
		if payload, found, err := o.deps.Cache.Get(domain.NamespaceCommit, key); err != nil {
			o.diagnostics.record(Diagnostic{Kind: "cache_io", Tier: "commit", Identifier: c.ShortHash(), Cause: err.Error()})
		} else if found {
			var cached domain.CommitAnalysis
			if unmarshalErr := json.Unmarshal(payload, &cached); unmarshalErr == nil {
				return cached, nil
			}
		}
	}

	budget := o.deps.Models.ForTier(llm.TierFast).MaxInputTokens

	chunks := difffit.Fit(c.Diff, budget)
	if len(chunks) == 0 {
		chunks = []string{""}
	}

	var allChanges []domain.Change

	trivial := true

	for _, chunk := range chunks {
		promptText := prompt.BuildCommit(c.Subject, c.Body, chunk)

		raw, err := o.deps.Gateway.Generate(ctx, llm.TierFast, promptText)
		if err != nil {
			return domain.CommitAnalysis{}, fmt.Errorf("generate commit analysis for %s: %w", c.ShortHash(), err)
		}

		var resp commitResponseWire
		if err := decode.Decode(raw, &resp); err != nil {
			return domain.CommitAnalysis{}, fmt.Errorf("decode commit analysis for %s: %w", c.ShortHash(), err)
		}

		changes, coercions := toChanges(resp.Changes)
		for _, bad := range coercions {
			o.diagnostics.record(Diagnostic{
				Kind:       "unknown_category",
				Tier:       "commit",
				Identifier: c.ShortHash(),
				Cause:      "unrecognized category " + bad,
			})
		}

		allChanges = append(allChanges, changes...)

		if !resp.Trivial {
			trivial = false
		}
	}

	analysis, err := domain.NewCommitAnalysis(domain.DedupChanges(allChanges), trivial)
	if err != nil {
		return domain.CommitAnalysis{}, fmt.Errorf("construct commit analysis for %s: %w", c.ShortHash(), err)
	}

	if keyErr == nil {
		if payload, marshalErr := json.Marshal(analysis); marshalErr == nil {
			if putErr := o.deps.Cache.Put(domain.NamespaceCommit, key, payload); putErr != nil {
				o.diagnostics.record(Diagnostic{Kind: "cache_io", Tier: "commit", Identifier: c.ShortHash(), Cause: putErr.Error()})
			}
		}
	}

	return analysis, nil
}
