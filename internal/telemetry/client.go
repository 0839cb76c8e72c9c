package telemetry

import (
	"context"
	"fmt"
	"time"

	"storefront-sync/internal/client"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ClientTelemetry records storefront resource operations. It satisfies the
// recorder interface the state package expects.
type ClientTelemetry struct {
	operationCounter  metric.Int64Counter
	failureCounter    metric.Int64Counter
	durationHistogram metric.Float64Histogram
}

func NewClientTelemetry(meter metric.Meter) (*ClientTelemetry, error) {
	t := &ClientTelemetry{}
	var err error

	if t.operationCounter, err = meter.Int64Counter(
		"storefront_client_operations_total",
		metric.WithDescription("Resource loads and mutations issued by the storefront client"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	if t.failureCounter, err = meter.Int64Counter(
		"storefront_client_failures_total",
		metric.WithDescription("Failed resource operations by error kind"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failure counter: %w", err)
	}

	if t.durationHistogram, err = meter.Float64Histogram(
		"storefront_client_operation_duration_seconds",
		metric.WithDescription("Duration of resource operations, including the HTTP round trip"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return t, nil
}

// RecordOperation counts one finished operation and its duration
func (t *ClientTelemetry) RecordOperation(ctx context.Context, resource, op string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	)

	t.operationCounter.Add(ctx, 1, attrs)
	t.durationHistogram.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		t.failureCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("resource", resource),
			attribute.String("operation", op),
			attribute.String("error_kind", client.Classify(err).String()),
		))
	}
}
