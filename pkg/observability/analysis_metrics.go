package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCommitsTotal     = "historian.analysis.commits.total"
	metricChunksTotal      = "historian.analysis.chunks.total"
	metricChunkDuration    = "historian.analysis.chunk.duration.seconds"
	metricCacheHitsTotal   = "historian.analysis.cache.hits.total"
	metricCacheMissesTotal = "historian.analysis.cache.misses.total"

	attrCache = "cache"

	cacheTierCommit = "commit"
	cacheTierDaily  = "daily"
	cacheTierWeekly = "weekly"
)

// AnalysisMetrics holds OTel instruments for analysis-specific metrics.
type AnalysisMetrics struct {
	commitsTotal  metric.Int64Counter
	chunksTotal   metric.Int64Counter
	chunkDuration metric.Float64Histogram
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
}

// AnalysisStats holds the statistics for a single orchestrator run,
// decoupled from orchestrator types.
type AnalysisStats struct {
	Commits          int64
	Chunks           int
	ChunkDurations   []time.Duration
	CommitCacheHits  int64
	CommitCacheMisses int64
	DailyCacheHits   int64
	DailyCacheMisses int64
	WeeklyCacheHits  int64
	WeeklyCacheMisses int64
}

// NewAnalysisMetrics creates analysis metric instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	commits, err := mt.Int64Counter(metricCommitsTotal,
		metric.WithDescription("Total commits analyzed"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitsTotal, err)
	}

	chunks, err := mt.Int64Counter(metricChunksTotal,
		metric.WithDescription("Total chunks processed by the diff fitter"),
		metric.WithUnit("{chunk}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChunksTotal, err)
	}

	chunkDur, err := mt.Float64Histogram(metricChunkDuration,
		metric.WithDescription("Per-tier LLM call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChunkDuration, err)
	}

	hits, err := mt.Int64Counter(metricCacheHitsTotal,
		metric.WithDescription("Cache hits by tier"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheHitsTotal, err)
	}

	misses, err := mt.Int64Counter(metricCacheMissesTotal,
		metric.WithDescription("Cache misses by tier"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheMissesTotal, err)
	}

	return &AnalysisMetrics{
		commitsTotal:  commits,
		chunksTotal:   chunks,
		chunkDuration: chunkDur,
		cacheHits:     hits,
		cacheMisses:   misses,
	}, nil
}

// RecordRun records analysis statistics for a completed orchestrator run.
// Safe to call on a nil receiver (no-op).
func (am *AnalysisMetrics) RecordRun(ctx context.Context, stats AnalysisStats) {
	if am == nil {
		return
	}

	am.commitsTotal.Add(ctx, stats.Commits)
	am.chunksTotal.Add(ctx, int64(stats.Chunks))

	for _, d := range stats.ChunkDurations {
		am.chunkDuration.Record(ctx, d.Seconds())
	}

	commitAttrs := metric.WithAttributes(attribute.String(attrCache, cacheTierCommit))
	am.cacheHits.Add(ctx, stats.CommitCacheHits, commitAttrs)
	am.cacheMisses.Add(ctx, stats.CommitCacheMisses, commitAttrs)

	dailyAttrs := metric.WithAttributes(attribute.String(attrCache, cacheTierDaily))
	am.cacheHits.Add(ctx, stats.DailyCacheHits, dailyAttrs)
	am.cacheMisses.Add(ctx, stats.DailyCacheMisses, dailyAttrs)

	weeklyAttrs := metric.WithAttributes(attribute.String(attrCache, cacheTierWeekly))
	am.cacheHits.Add(ctx, stats.WeeklyCacheHits, weeklyAttrs)
	am.cacheMisses.Add(ctx, stats.WeeklyCacheMisses, weeklyAttrs)
}
