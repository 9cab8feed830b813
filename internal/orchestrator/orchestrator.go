// Package orchestrator implements the Orchestrator component: it drives
// the full hierarchical commit → day → week → merge pipeline over an
// AnalysisWindow, honouring the no-commit-lost invariant, bounded
// concurrency per tier, and cache reuse via the Cache Store.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/bramblewood/historian/internal/domain"
	"github.com/bramblewood/historian/internal/llm"
	"github.com/bramblewood/historian/internal/reader"
	"github.com/bramblewood/historian/internal/cachestore"
)

// ArtifactMerger combines the WeekArtifacts produced by a run with any
// pre-existing on-disk artifact state. It is implemented by
// internal/artifact.Merger; defining it here keeps the Orchestrator
// decoupled from the merger's file-format concerns.
type ArtifactMerger interface {
	Merge(ctx context.Context, weeks []domain.WeekArtifact) error
}

// Dependencies are the collaborators a run needs: a Reader to materialize
// the window's commits and diffs, an LLM Gateway and its tier
// configuration, a Cache Store, an ArtifactMerger, and the repository-local
// timezone used for calendar-date bucketing.
type Dependencies struct {
	Reader   reader.Reader
	Gateway  *llm.Gateway
	Models   llm.Config
	Cache    *cachestore.Store
	Merger   ArtifactMerger
	Location *time.Location
}

// Limits bounds the number of outstanding LLM calls per tier (spec §5).
type Limits struct {
	Commit int
	Day    int
	Week   int
}

// DefaultLimits returns the spec's default concurrency bounds:
// W_commit=5, W_day=3, W_week=2.
func DefaultLimits() Limits {
	return Limits{Commit: 5, Day: 3, Week: 2}
}

func (l Limits) withDefaults() Limits {
	if l.Commit <= 0 {
		l.Commit = 5
	}

	if l.Day <= 0 {
		l.Day = 3
	}

	if l.Week <= 0 {
		l.Week = 2
	}

	return l
}

// Orchestrator executes runs against a fixed set of Dependencies and
// Limits. It is not safe to reuse across concurrent Run calls against the
// same artifact directory (spec §5 notes concurrent runs are unsupported).
type Orchestrator struct {
	deps        Dependencies
	limits      Limits
	diagnostics *diagnosticSink
}

// New constructs an Orchestrator. Zero-value Limits fields are replaced
// with their spec defaults; a nil Location defaults to UTC.
func New(deps Dependencies, limits Limits) *Orchestrator {
	if deps.Location == nil {
		deps.Location = time.UTC
	}

	return &Orchestrator{
		deps:        deps,
		limits:      limits.withDefaults(),
		diagnostics: &diagnosticSink{},
	}
}

// Run executes the full pipeline for window: it materializes the
// AnalysisWindow from the Reader, fans out the commit tier, then the daily
// tier, then the weekly tier, and finally delegates to the ArtifactMerger.
// It returns every Diagnostic recorded along the way, alongside a nil
// error, unless a Repository read failure or a cancelled context aborts
// the run before the merge step — per spec §4.7.3, a repository read
// failure is fatal (the run cannot guarantee commit completeness), and a
// cancelled run never reaches the merge step so that no partial artifact
// is written.
func (o *Orchestrator) Run(ctx context.Context, window reader.Window) ([]Diagnostic, error) {
	commits, err := drainCommits(o.deps.Reader.CommitsIn(ctx, window))
	if err != nil {
		return nil, fmt.Errorf("read commits: %w", err)
	}

	if len(commits) == 0 {
		if err := ctx.Err(); err != nil {
			return o.diagnostics.drain(), fmt.Errorf("run cancelled while reading commits: %w", err)
		}

		if err := o.deps.Merger.Merge(ctx, nil); err != nil {
			return o.diagnostics.drain(), fmt.Errorf("merge: %w", err)
		}

		return o.diagnostics.drain(), nil
	}

	dailyDiffs, err := drainDailyDiffs(o.deps.Reader.DailyDiffs(ctx, window))
	if err != nil {
		return nil, fmt.Errorf("read daily diffs: %w", err)
	}

	weeklyDiffByLabel, err := drainWeeklyDiffs(o.deps.Reader.WeeklyDiffs(ctx, window))
	if err != nil {
		return nil, fmt.Errorf("read weekly diffs: %w", err)
	}

	dayBuckets, err := buildDayBuckets(commits, dailyDiffs, o.deps.Location)
	if err != nil {
		return nil, fmt.Errorf("build day buckets: %w", err)
	}

	weekBuckets, err := buildWeekBuckets(dayBuckets)
	if err != nil {
		return nil, fmt.Errorf("build week buckets: %w", err)
	}

	commitAnalyses := o.runCommitTier(ctx, commits)
	if err := ctx.Err(); err != nil {
		return o.diagnostics.drain(), fmt.Errorf("run cancelled during commit tier: %w", err)
	}

	analysesByHash := make(map[string]domain.CommitAnalysis, len(commits))
	for i, c := range commits {
		analysesByHash[c.Hash] = commitAnalyses[i]
	}

	dailyDiffByDate := make(map[string]string, len(dailyDiffs))
	for _, dd := range dailyDiffs {
		dailyDiffByDate[dd.Date.Format(dateLayout)] = dd.Diff
	}

	dailySyntheses := o.runDailyTier(ctx, dayBuckets, analysesByHash, dailyDiffByDate)
	if err := ctx.Err(); err != nil {
		return o.diagnostics.drain(), fmt.Errorf("run cancelled during daily tier: %w", err)
	}

	dailyByDate := make(map[string]domain.DailySynthesis, len(dailySyntheses))
	for i, bucket := range dayBuckets {
		dailyByDate[bucket.Date.Format(dateLayout)] = dailySyntheses[i]
	}

	weekArtifacts, err := o.runWeeklyTier(ctx, weekBuckets, dailyByDate, analysesByHash, weeklyDiffByLabel)
	if err != nil {
		return nil, fmt.Errorf("build week artifacts: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return o.diagnostics.drain(), fmt.Errorf("run cancelled during weekly tier: %w", err)
	}

	if err := o.deps.Merger.Merge(ctx, weekArtifacts); err != nil {
		return o.diagnostics.drain(), fmt.Errorf("merge: %w", err)
	}

	return o.diagnostics.drain(), nil
}
