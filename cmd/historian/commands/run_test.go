package commands

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewood/historian/pkg/config"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, exitOK, ExitCode(nil))
	assert.Equal(t, exitRunFailed, ExitCode(errors.New("unrelated failure")))

	wrapped := &runExitError{code: exitMissingCredential, err: errors.New("missing credential")}
	assert.Equal(t, exitMissingCredential, ExitCode(wrapped))
	assert.Equal(t, "missing credential", wrapped.Error())
	assert.Equal(t, wrapped.err, errors.Unwrap(wrapped))

	doubleWrapped := errors.New("wrap")
	assert.Equal(t, exitRunFailed, ExitCode(doubleWrapped))
}

func TestResolveWindow_ExplicitBoundsWin(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)

	cfg := &config.Config{Analysis: config.AnalysisConfig{Since: since, Until: until, LastNWeeks: 4}}

	gotSince, gotUntil, err := resolveWindow(cfg)
	require.NoError(t, err)
	assert.True(t, gotSince.Equal(since))
	assert.True(t, gotUntil.Equal(until))
}

func TestResolveWindow_SinceOnlyDefaultsUntilToNow(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := &config.Config{Analysis: config.AnalysisConfig{Since: since, LastNWeeks: 4}}

	before := time.Now()
	gotSince, gotUntil, err := resolveWindow(cfg)
	after := time.Now()

	require.NoError(t, err)
	assert.True(t, gotSince.Equal(since))
	assert.True(t, !gotUntil.Before(before) && !gotUntil.After(after))
}

func TestResolveWindow_FallsBackToLastNWeeks(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Analysis: config.AnalysisConfig{LastNWeeks: 2}}

	gotSince, gotUntil, err := resolveWindow(cfg)
	require.NoError(t, err)

	wantSpan := 2 * 7 * 24 * time.Hour
	assert.WithinDuration(t, gotUntil.Add(-wantSpan), gotSince, time.Second)
}

func TestResolveWindow_UntilOnlyUsesConfiguredUntil(t *testing.T) {
	t.Parallel()

	until := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := &config.Config{Analysis: config.AnalysisConfig{Until: until, LastNWeeks: 1}}

	gotSince, gotUntil, err := resolveWindow(cfg)
	require.NoError(t, err)
	assert.True(t, gotUntil.Equal(until))
	assert.True(t, gotSince.Equal(until.AddDate(0, 0, -7)))
}

func TestToLLMConfig_MapsAllThreeTiers(t *testing.T) {
	t.Parallel()

	cfg := config.LLMConfig{
		Fast:     config.TierConfig{Model: "fast-model", MaxInputTokens: 1, MaxOutputTokens: 2, Temperature: 0.1, Timeout: time.Second, MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Minute},
		Balanced: config.TierConfig{Model: "balanced-model"},
		Deep:     config.TierConfig{Model: "deep-model"},
	}

	got := toLLMConfig(cfg)

	assert.Equal(t, "fast-model", got.Fast.Model)
	assert.Equal(t, 1, got.Fast.MaxInputTokens)
	assert.Equal(t, 2, got.Fast.MaxOutputTokens)
	assert.Equal(t, 0.1, got.Fast.Temperature)
	assert.Equal(t, time.Second, got.Fast.Timeout)
	assert.Equal(t, 3, got.Fast.MaxAttempts)
	assert.Equal(t, time.Millisecond, got.Fast.InitialBackoff)
	assert.Equal(t, time.Minute, got.Fast.MaxBackoff)
	assert.Equal(t, "balanced-model", got.Balanced.Model)
	assert.Equal(t, "deep-model", got.Deep.Model)
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":       slog.LevelDebug,
		"warn":        slog.LevelWarn,
		"error":       slog.LevelError,
		"info":        slog.LevelInfo,
		"":            slog.LevelInfo,
		"unexpected":  slog.LevelInfo,
	}

	for input, want := range cases {
		assert.Equal(t, want, parseLogLevel(input), "input=%q", input)
	}
}

func TestProbeCacheRoot_CreatesMissingDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir() + "/nested/cache"
	require.NoError(t, probeCacheRoot(root))
}
