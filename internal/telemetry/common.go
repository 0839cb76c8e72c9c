// Package telemetry wires OpenTelemetry metrics for the mock API and the
// storefront client.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Exporter names accepted by InitMetrics
const (
	ExporterScraper = "scraper"
	ExporterGRPC    = "grpc"
	ExporterNone    = "none"
)

// Telemetry owns the meter provider and, in scraper mode, the Prometheus registry
type Telemetry struct {
	Provider *sdkmetric.MeterProvider // nil when exporting is disabled
	exporter string
	registry *prometheus.Registry
	meter    api.Meter
}

// InitMetrics builds a meter provider for the given exporter and installs it
// as the global provider. "scraper" exposes a Prometheus handler, "grpc"
// (or "otlp") pushes to OTEL_EXPORTER_OTLP_METRICS_ENDPOINT, "none" records nothing.
func InitMetrics(ctx context.Context, meterName, exporter string) (*Telemetry, error) {
	t := &Telemetry{exporter: strings.ToLower(strings.TrimSpace(exporter))}

	switch t.exporter {
	case ExporterScraper, "prometheus":
		slog.Info("Starting metrics with scraper exporter")
		t.exporter = ExporterScraper
		t.registry = prometheus.NewRegistry()
		exp, err := otelprom.New(otelprom.WithRegisterer(t.registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		t.Provider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))

	case ExporterGRPC, "otlp":
		slog.Info("Starting metrics with grpc exporter")
		t.exporter = ExporterGRPC
		exp, err := otlpmetricgrpc.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create grpc exporter: %w", err)
		}
		t.Provider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))

	case ExporterNone, "":
		slog.Info("Metrics export disabled")
		t.exporter = ExporterNone
		t.meter = noop.NewMeterProvider().Meter(meterName)
		return t, nil

	default:
		return nil, fmt.Errorf("unknown metrics exporter %q", exporter)
	}

	otel.SetMeterProvider(t.Provider)
	t.meter = t.Provider.Meter(meterName)
	return t, nil
}

// Meter returns the meter instruments should be created from
func (t *Telemetry) Meter() api.Meter {
	return t.meter
}

func (t *Telemetry) Exporter() string {
	return t.exporter
}

// MetricsHandler serves the Prometheus exposition format in scraper mode and
// 404 otherwise
func (t *Telemetry) MetricsHandler() http.Handler {
	if t.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes pending metrics and stops the provider
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.Provider == nil {
		return nil
	}
	err := t.Provider.ForceFlush(ctx)
	return errors.Join(err, t.Provider.Shutdown(ctx))
}
