package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/bramblewood/historian/pkg/config"
	"github.com/bramblewood/historian/pkg/observability"
)

// NewServeCommand builds the "serve" subcommand: a long-running process
// that exposes a Prometheus /metrics scrape endpoint and a /healthz probe,
// for deployments that want historian's own observability surface rather
// than invoking "run" from a scheduler.
func NewServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run historian's /metrics and /healthz HTTP endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serveHistorian(cmd, configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Configuration file path (default: config.yaml in CWD or /etc/historian)")

	return cmd
}

func serveHistorian(cmd *cobra.Command, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return &runExitError{code: exitConfigurationInvalid, err: fmt.Errorf("load config: %w", err)}
	}

	if !cfg.Server.Enabled {
		return &runExitError{code: exitConfigurationInvalid, err: errors.New("server.enabled is false")}
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.Mode = observability.ModeServe
	obsCfg.LogLevel = parseLogLevel(cfg.Logging.Level)
	obsCfg.LogJSON = cfg.Logging.Format == "json"

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	metricsHandler, meterProvider, err := observability.PrometheusHandler(obsCfg)
	if err != nil {
		return fmt.Errorf("init prometheus handler: %w", err)
	}

	otel.SetMeterProvider(meterProvider)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      observability.HTTPMiddleware(providers.Tracer, providers.Logger, mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)

	go func() {
		providers.Logger.Info("serving", "addr", addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err

			return
		}

		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return &runExitError{code: exitRunFailed, err: fmt.Errorf("shutdown server: %w", err)}
		}

		return nil
	case err := <-serveErr:
		if err != nil {
			return &runExitError{code: exitRunFailed, err: fmt.Errorf("serve: %w", err)}
		}

		return nil
	}
}
