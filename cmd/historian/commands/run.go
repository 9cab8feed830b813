// Package commands implements CLI command handlers for historian.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bramblewood/historian/internal/artifact"
	"github.com/bramblewood/historian/internal/cachestore"
	"github.com/bramblewood/historian/internal/domain"
	"github.com/bramblewood/historian/internal/llm"
	"github.com/bramblewood/historian/internal/orchestrator"
	"github.com/bramblewood/historian/internal/reader"
	"github.com/bramblewood/historian/pkg/config"
	"github.com/bramblewood/historian/pkg/gitlib"
	"github.com/bramblewood/historian/pkg/observability"
)

// Exit codes for the run command, per the program's external contract: 0
// covers success including degraded-placeholder success, distinct
// non-zero codes separate the fatal categories a caller may want to
// script against.
const (
	exitOK                   = 0
	exitRepositoryNotFound   = 10
	exitInvalidWindow        = 11
	exitMissingCredential    = 12
	exitCacheRootUnusable    = 13
	exitConfigurationInvalid = 14
	exitRunFailed            = 15
)

// runExitError carries the process exit code alongside the error message
// RunE reports through cobra.
type runExitError struct {
	code int
	err  error
}

func (e *runExitError) Error() string { return e.err.Error() }
func (e *runExitError) Unwrap() error { return e.err }

// ExitCode extracts the process exit code intended for err, defaulting to
// exitRunFailed for any error not produced by this package.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var exitErr *runExitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	return exitRunFailed
}

// NewRunCommand builds the "run" subcommand.
func NewRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze repository history and write narrative artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistorian(cmd, configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Configuration file path (default: config.yaml in CWD or /etc/historian)")

	return cmd
}

func runHistorian(cmd *cobra.Command, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return &runExitError{code: exitConfigurationInvalid, err: fmt.Errorf("load config: %w", err)}
	}

	if cfg.LLM.Credential == "" {
		return &runExitError{code: exitMissingCredential, err: errors.New("missing LLM credential")}
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.LogLevel = parseLogLevel(cfg.Logging.Level)
	obsCfg.LogJSON = cfg.Logging.Format == "json"

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		if shutdownErr := providers.Shutdown(ctx); shutdownErr != nil && providers.Logger != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	since, until, err := resolveWindow(cfg)
	if err != nil {
		return &runExitError{code: exitInvalidWindow, err: err}
	}

	if _, err := domain.NewAnalysisWindow(since, until, nil); err != nil {
		return &runExitError{code: exitInvalidWindow, err: fmt.Errorf("validate window: %w", err)}
	}

	repo, err := gitlib.OpenRepository(cfg.Repository.Path)
	if err != nil {
		return &runExitError{code: exitRepositoryNotFound, err: fmt.Errorf("open repository: %w", err)}
	}
	defer repo.Free()

	location, err := time.LoadLocation(cfg.Repository.Timezone)
	if err != nil {
		return &runExitError{code: exitConfigurationInvalid, err: fmt.Errorf("load timezone: %w", err)}
	}

	cacheStore := cachestore.NewStore(cfg.Cache.Root)
	if err := probeCacheRoot(cfg.Cache.Root); err != nil {
		return &runExitError{code: exitCacheRootUnusable, err: err}
	}

	merger := artifact.NewMerger(artifact.Paths{
		Narrative: cfg.Artifacts.NarrativePath,
		Changelog: cfg.Artifacts.ChangelogPath,
		DailyLog:  cfg.Artifacts.DailyLogPath,
	})

	if cfg.Analysis.ReleaseVersion != "" {
		merger.ReleaseVersion = cfg.Analysis.ReleaseVersion
		merger.ReleaseDate = time.Now().In(location).Format("2006-01-02")
	}

	gateway := llm.NewGateway(llm.NewOpenAIClient(cfg.LLM.Credential, ""), toLLMConfig(cfg.LLM))

	orch := orchestrator.New(orchestrator.Dependencies{
		Reader:   reader.NewGitlibReader(repo, location),
		Gateway:  gateway,
		Models:   toLLMConfig(cfg.LLM),
		Cache:    cacheStore,
		Merger:   merger,
		Location: location,
	}, orchestrator.Limits{
		Commit: cfg.Analysis.WCommit,
		Day:    cfg.Analysis.WDay,
		Week:   cfg.Analysis.WWeek,
	})

	var span trace.Span

	ctx, span = providers.Tracer.Start(ctx, "historian.run")
	defer span.End()

	span.SetAttributes(
		attribute.String("historian.repository", cfg.Repository.Path),
		attribute.String("historian.since", since.Format(time.RFC3339)),
		attribute.String("historian.until", until.Format(time.RFC3339)),
	)

	progressWriter := cmd.ErrOrStderr()
	fmt.Fprintf(progressWriter, "analyzing %s, window starting %s (%s) through %s\n",
		cfg.Repository.Path, since.Format("2006-01-02"), humanize.Time(since), until.Format("2006-01-02"))

	diagnostics, err := orch.Run(ctx, reader.Window{Since: since, Until: until})

	span.SetAttributes(attribute.Bool("error", err != nil), attribute.Int("historian.diagnostics", len(diagnostics)))

	if err != nil {
		return &runExitError{code: exitRunFailed, err: fmt.Errorf("run: %w", err)}
	}

	printDiagnostics(progressWriter, diagnostics)

	return nil
}

func resolveWindow(cfg *config.Config) (since, until time.Time, err error) {
	if !cfg.Analysis.Since.IsZero() && !cfg.Analysis.Until.IsZero() {
		return cfg.Analysis.Since, cfg.Analysis.Until, nil
	}

	now := time.Now()

	if !cfg.Analysis.Since.IsZero() {
		return cfg.Analysis.Since, now, nil
	}

	until = now
	if !cfg.Analysis.Until.IsZero() {
		until = cfg.Analysis.Until
	}

	since = until.AddDate(0, 0, -7*cfg.Analysis.LastNWeeks)

	return since, until, nil
}

func toLLMConfig(cfg config.LLMConfig) llm.Config {
	return llm.Config{
		Fast:     toTierConfig(cfg.Fast),
		Balanced: toTierConfig(cfg.Balanced),
		Deep:     toTierConfig(cfg.Deep),
	}
}

func toTierConfig(t config.TierConfig) llm.TierConfig {
	return llm.TierConfig{
		Model:           t.Model,
		MaxInputTokens:  t.MaxInputTokens,
		MaxOutputTokens: t.MaxOutputTokens,
		Temperature:     t.Temperature,
		Timeout:         t.Timeout,
		MaxAttempts:     t.MaxAttempts,
		InitialBackoff:  t.InitialBackoff,
		MaxBackoff:      t.MaxBackoff,
	}
}

func probeCacheRoot(root string) error {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("cache root %s is not usable: %w", root, err)
	}

	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printDiagnostics(w io.Writer, diagnostics []orchestrator.Diagnostic) {
	if len(diagnostics) == 0 {
		fmt.Fprintln(w, color.GreenString("run complete, no diagnostics"))

		return
	}

	fmt.Fprintln(w, color.YellowString("run complete with %s diagnostics:", humanize.Comma(int64(len(diagnostics)))))

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"Kind", "Tier", "Identifier", "Cause"})

	for _, d := range diagnostics {
		tbl.AppendRow(table.Row{d.Kind, d.Tier, d.Identifier, d.Cause})
	}

	tbl.Render()
}
