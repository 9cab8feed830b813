package llm

import "time"

// Tier names one of the three independently configured text-generation
// tiers the Orchestrator picks between per operation: commit analysis uses
// fast, daily synthesis uses balanced, the weekly narrative uses deep (the
// weekly changelog is aggregated without an LLM call).
type Tier string

const (
	TierFast     Tier = "fast"
	TierBalanced Tier = "balanced"
	TierDeep     Tier = "deep"
)

// TierConfig holds one tier's model identity and call-shaping parameters.
type TierConfig struct {
	Model           string
	MaxInputTokens  int
	MaxOutputTokens int
	Temperature     float64
	Timeout         time.Duration
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
}

// Config collects the per-tier configuration for all three tiers.
type Config struct {
	Fast     TierConfig
	Balanced TierConfig
	Deep     TierConfig
}

// ForTier returns the TierConfig for the named tier.
func (c Config) ForTier(tier Tier) TierConfig {
	switch tier {
	case TierFast:
		return c.Fast
	case TierBalanced:
		return c.Balanced
	case TierDeep:
		return c.Deep
	default:
		return c.Fast
	}
}
