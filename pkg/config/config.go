// Package config provides configuration loading and validation for historian.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors, wrapped into a ConfigurationError by validateConfig.
var (
	ErrRepositoryPathRequired = errors.New("repository path is required")
	ErrInvalidWindow          = errors.New("analysis window is invalid")
	ErrInvalidTimezone        = errors.New("repository timezone is invalid")
	ErrInvalidConcurrency     = errors.New("concurrency bound must be positive")
	ErrCacheRootRequired      = errors.New("cache root is required")
	ErrInvalidTierModel       = errors.New("tier model configuration is invalid")
)

// ConfigurationError wraps a validation failure with the offending field path.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Default configuration values.
const (
	defaultCacheRoot        = "/tmp/historian-cache"
	defaultTimezone         = "UTC"
	defaultLastNWeeks       = 4
	defaultWCommit          = 5
	defaultWDay             = 3
	defaultWWeek            = 2
	defaultFastMaxTokens    = 2048
	defaultBalancedMaxTokens = 4096
	defaultDeepMaxTokens    = 8192
	defaultTemperature      = 0.2
	defaultTimeout          = 60 * time.Second
	defaultMaxAttempts      = 3
	defaultInitialBackoff   = 500 * time.Millisecond
	defaultMaxBackoff       = 30 * time.Second
	maxConcurrencyBound     = 256
)

// Config holds all configuration for a historian run.
type Config struct {
	Repository RepositoryConfig `mapstructure:"repository"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Artifacts  ArtifactsConfig  `mapstructure:"artifacts"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Server     ServerConfig     `mapstructure:"server"`
}

// RepositoryConfig identifies the git repository under analysis.
type RepositoryConfig struct {
	// Path is the filesystem path to the repository to analyze.
	Path string `mapstructure:"path"`

	// Timezone is the IANA zone name used to bucket commits into calendar
	// days and weeks (e.g. "UTC", "America/New_York").
	Timezone string `mapstructure:"timezone"`
}

// AnalysisConfig configures the analysis window and concurrency bounds.
type AnalysisConfig struct {
	// Since and Until bound the analysis window explicitly. Either may be
	// zero: a zero Until defaults to now, and a zero Since is resolved
	// from LastNWeeks.
	Since time.Time `mapstructure:"since"`
	Until time.Time `mapstructure:"until"`

	// LastNWeeks sets Since to N weeks before Until when Since is zero, so
	// the window is the last N weeks ending at Until (or now, when Until
	// is zero too). It is ignored when Since is set. Defaults to 4.
	LastNWeeks int `mapstructure:"last_n_weeks"`

	// ReleaseVersion, when set, promotes the Unreleased changelog section
	// to this version tag at the end of the run.
	ReleaseVersion string `mapstructure:"release_version"`

	// DryRun is loaded from the "dry_run" key, but no command reads it: a
	// run with DryRun set calls the LLM, writes the cache and merges the
	// artifacts exactly as one without it.
	DryRun bool `mapstructure:"dry_run"`

	// Concurrency bounds per tier (commit, day, week fan-out).
	WCommit int `mapstructure:"w_commit"`
	WDay    int `mapstructure:"w_day"`
	WWeek   int `mapstructure:"w_week"`
}

// TierConfig configures one LLM tier (fast/balanced/deep).
type TierConfig struct {
	Model          string        `mapstructure:"model"`
	MaxInputTokens int           `mapstructure:"max_input_tokens"`
	MaxOutputTokens int          `mapstructure:"max_output_tokens"`
	Temperature    float64       `mapstructure:"temperature"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// LLMConfig holds the three-tier model configuration and credential.
type LLMConfig struct {
	// Credential is an opaque API credential, read from config or
	// environment; never logged.
	Credential string `mapstructure:"credential"`

	Fast     TierConfig `mapstructure:"fast"`
	Balanced TierConfig `mapstructure:"balanced"`
	Deep     TierConfig `mapstructure:"deep"`
}

// CacheConfig configures the content-addressed cache store.
type CacheConfig struct {
	Root string `mapstructure:"root"`
}

// ArtifactsConfig configures output artifact paths.
type ArtifactsConfig struct {
	NarrativePath  string `mapstructure:"narrative_path"`
	ChangelogPath  string `mapstructure:"changelog_path"`
	DailyLogPath   string `mapstructure:"daily_log_path"`
	DiagnosticsDir string `mapstructure:"diagnostics_dir"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ServerConfig holds the optional /metrics HTTP endpoint configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
	Enabled      bool          `mapstructure:"enabled"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/historian")
	}

	viperCfg.SetEnvPrefix("HISTORIAN")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&cfg)
	if validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("repository.timezone", defaultTimezone)

	viperCfg.SetDefault("analysis.last_n_weeks", defaultLastNWeeks)
	viperCfg.SetDefault("analysis.w_commit", defaultWCommit)
	viperCfg.SetDefault("analysis.w_day", defaultWDay)
	viperCfg.SetDefault("analysis.w_week", defaultWWeek)

	viperCfg.SetDefault("llm.fast.max_input_tokens", defaultFastMaxTokens)
	viperCfg.SetDefault("llm.fast.max_output_tokens", defaultFastMaxTokens)
	viperCfg.SetDefault("llm.fast.temperature", defaultTemperature)
	viperCfg.SetDefault("llm.fast.timeout", defaultTimeout)
	viperCfg.SetDefault("llm.fast.max_attempts", defaultMaxAttempts)
	viperCfg.SetDefault("llm.fast.initial_backoff", defaultInitialBackoff)
	viperCfg.SetDefault("llm.fast.max_backoff", defaultMaxBackoff)

	viperCfg.SetDefault("llm.balanced.max_input_tokens", defaultBalancedMaxTokens)
	viperCfg.SetDefault("llm.balanced.max_output_tokens", defaultBalancedMaxTokens)
	viperCfg.SetDefault("llm.balanced.temperature", defaultTemperature)
	viperCfg.SetDefault("llm.balanced.timeout", defaultTimeout)
	viperCfg.SetDefault("llm.balanced.max_attempts", defaultMaxAttempts)
	viperCfg.SetDefault("llm.balanced.initial_backoff", defaultInitialBackoff)
	viperCfg.SetDefault("llm.balanced.max_backoff", defaultMaxBackoff)

	viperCfg.SetDefault("llm.deep.max_input_tokens", defaultDeepMaxTokens)
	viperCfg.SetDefault("llm.deep.max_output_tokens", defaultDeepMaxTokens)
	viperCfg.SetDefault("llm.deep.temperature", defaultTemperature)
	viperCfg.SetDefault("llm.deep.timeout", defaultTimeout)
	viperCfg.SetDefault("llm.deep.max_attempts", defaultMaxAttempts)
	viperCfg.SetDefault("llm.deep.initial_backoff", defaultInitialBackoff)
	viperCfg.SetDefault("llm.deep.max_backoff", defaultMaxBackoff)

	viperCfg.SetDefault("cache.root", defaultCacheRoot)

	viperCfg.SetDefault("artifacts.narrative_path", "NARRATIVE.md")
	viperCfg.SetDefault("artifacts.changelog_path", "CHANGELOG.md")
	viperCfg.SetDefault("artifacts.daily_log_path", "DAILY_LOG.md")
	viperCfg.SetDefault("artifacts.diagnostics_dir", "")

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "json")
	viperCfg.SetDefault("logging.output", "stdout")

	viperCfg.SetDefault("server.enabled", false)
	viperCfg.SetDefault("server.port", 8080) //nolint:mnd // matches teacher's literal default port.
	viperCfg.SetDefault("server.host", "0.0.0.0")
	viperCfg.SetDefault("server.read_timeout", "30s")
	viperCfg.SetDefault("server.write_timeout", "30s")
	viperCfg.SetDefault("server.idle_timeout", "60s")
}

// validateConfig validates the configuration, returning a *ConfigurationError
// naming the offending field on failure.
func validateConfig(cfg *Config) error {
	if cfg.Repository.Path == "" {
		return &ConfigurationError{Field: "repository.path", Err: ErrRepositoryPathRequired}
	}

	if _, err := time.LoadLocation(cfg.Repository.Timezone); err != nil {
		return &ConfigurationError{Field: "repository.timezone", Err: fmt.Errorf("%w: %w", ErrInvalidTimezone, err)}
	}

	if !cfg.Analysis.Since.IsZero() && !cfg.Analysis.Until.IsZero() && !cfg.Analysis.Since.Before(cfg.Analysis.Until) {
		return &ConfigurationError{Field: "analysis.since/until", Err: ErrInvalidWindow}
	}

	if cfg.Analysis.Since.IsZero() && cfg.Analysis.Until.IsZero() && cfg.Analysis.LastNWeeks <= 0 {
		return &ConfigurationError{Field: "analysis.last_n_weeks", Err: ErrInvalidWindow}
	}

	for field, n := range map[string]int{
		"analysis.w_commit": cfg.Analysis.WCommit,
		"analysis.w_day":    cfg.Analysis.WDay,
		"analysis.w_week":   cfg.Analysis.WWeek,
	} {
		if n <= 0 || n > maxConcurrencyBound {
			return &ConfigurationError{Field: field, Err: fmt.Errorf("%w: %d", ErrInvalidConcurrency, n)}
		}
	}

	if cfg.Cache.Root == "" {
		return &ConfigurationError{Field: "cache.root", Err: ErrCacheRootRequired}
	}

	for field, tier := range map[string]TierConfig{
		"llm.fast":     cfg.LLM.Fast,
		"llm.balanced": cfg.LLM.Balanced,
		"llm.deep":     cfg.LLM.Deep,
	} {
		if tier.MaxAttempts <= 0 || tier.MaxInputTokens <= 0 || tier.MaxOutputTokens <= 0 || tier.Timeout <= 0 {
			return &ConfigurationError{Field: field, Err: ErrInvalidTierModel}
		}
	}

	return nil
}
