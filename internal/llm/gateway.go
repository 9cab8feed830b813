// Package llm implements the LLM Gateway: a tiered, retrying abstraction
// over a concrete text-generation provider. The Gateway owns retry
// classification, exponential backoff with jitter, per-call timeouts, and
// cooperative cancellation; Client implementations own the actual wire
// protocol to a provider.
package llm

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Client abstracts a concrete text-generation provider. Implementations
// classify their own failures by wrapping one of the sentinel errors in
// this package (ErrTransport, ErrTransientServer, ErrRateLimited are
// retryable; ErrAuthentication, ErrMalformedRequest are not).
type Client interface {
	Complete(ctx context.Context, tier Tier, cfg TierConfig, prompt string) (string, error)
}

// Gateway dispatches Generate calls to a Client under the tiered
// configuration, retrying retryable failures with exponential backoff and
// jitter up to each tier's configured attempt limit.
type Gateway struct {
	client Client
	config Config
}

// NewGateway constructs a Gateway over client using the given per-tier
// configuration.
func NewGateway(client Client, config Config) *Gateway {
	return &Gateway{client: client, config: config}
}

// Generate produces text for prompt at the given tier. On a retryable
// failure it retries up to the tier's MaxAttempts using exponential
// backoff with jitter; on a non-retryable failure it fails immediately. A
// cancelled or expired ctx aborts in-flight and pending attempts at the
// next suspension point. Retries are not cached by the Gateway — only the
// final successful response, if any, is the caller's concern to cache.
func (g *Gateway) Generate(ctx context.Context, tier Tier, prompt string) (string, error) {
	cfg := g.config.ForTier(tier)

	backoff := cfg.InitialBackoff
	correlationID := uuid.NewString()

	var lastErr error

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := g.attempt(ctx, tier, cfg, prompt)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return "", &LLMError{Tier: tier, CorrelationID: correlationID, Attempts: attempt, Err: err}
		}

		if attempt == maxAttempts {
			break
		}

		wait := jitter(backoff)

		select {
		case <-ctx.Done():
			return "", &LLMError{Tier: tier, CorrelationID: correlationID, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(wait):
		}

		backoff *= 2
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	return "", &LLMError{Tier: tier, CorrelationID: correlationID, Attempts: maxAttempts, Err: lastErr}
}

func (g *Gateway) attempt(ctx context.Context, tier Tier, cfg TierConfig, prompt string) (string, error) {
	callCtx := ctx

	var cancel context.CancelFunc

	if cfg.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	return g.client.Complete(callCtx, tier, cfg, prompt)
}

// jitter returns d plus up to 20% random variation, so that concurrent
// retries across commit-tier tasks don't all resume in lockstep.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}

	spread := float64(d) * 0.2

	return d + time.Duration(rand.Float64()*spread) //nolint:gosec // jitter spacing, not a security use
}
