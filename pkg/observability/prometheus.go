package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusHandler creates a Prometheus metrics exporter backed by a new
// OTel MeterProvider and returns an [http.Handler] that serves the
// /metrics scrape endpoint alongside the MeterProvider it reads from. The
// caller installs the MeterProvider globally (via otel.SetMeterProvider)
// so instruments created afterwards feed the exporter. Each call builds an
// independent Prometheus registry to avoid collector conflicts when called
// more than once.
func PrometheusHandler(cfg Config) (http.Handler, metric.MeterProvider, error) {
	res, err := buildResource(cfg)
	if err != nil {
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), mp, nil
}
