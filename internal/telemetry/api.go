package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// APITelemetry holds the mock API's request instruments
type APITelemetry struct {
	requestCounter    metric.Int64Counter
	errorCounter      metric.Int64Counter
	durationHistogram metric.Float64Histogram

	// business counters
	cartMutationCounter     metric.Int64Counter
	wishlistMutationCounter metric.Int64Counter
	loginCounter            metric.Int64Counter
}

// RequestMetrics describes one finished request
type RequestMetrics struct {
	Method       string
	Endpoint     string // route template, never the raw path
	StatusCode   int
	Duration     time.Duration
	ErrorMessage string
	ClientIP     string // logged only
	ClientIPType string
}

// NewAPITelemetry creates the instruments on meter
func NewAPITelemetry(meter metric.Meter) (*APITelemetry, error) {
	t := &APITelemetry{}
	var err error

	if t.requestCounter, err = meter.Int64Counter(
		"storefront_api_requests_total",
		metric.WithDescription("Total number of API requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	if t.errorCounter, err = meter.Int64Counter(
		"storefront_api_errors_total",
		metric.WithDescription("Total number of API requests answered with status 400 or above"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	if t.durationHistogram, err = meter.Float64Histogram(
		"storefront_api_request_duration_seconds",
		metric.WithDescription("Duration of API requests"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	if t.cartMutationCounter, err = meter.Int64Counter(
		"storefront_cart_mutations_total",
		metric.WithDescription("Successful cart mutations"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cart mutation counter: %w", err)
	}

	if t.wishlistMutationCounter, err = meter.Int64Counter(
		"storefront_wishlist_mutations_total",
		metric.WithDescription("Successful wishlist mutations"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create wishlist mutation counter: %w", err)
	}

	if t.loginCounter, err = meter.Int64Counter(
		"storefront_logins_total",
		metric.WithDescription("Login attempts by outcome"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create login counter: %w", err)
	}

	slog.Info("API telemetry initialized")
	return t, nil
}

// RegisterRequest records one request: count, error count and duration
func (t *APITelemetry) RegisterRequest(ctx context.Context, m RequestMetrics) {
	// Low-cardinality attributes only
	attrs := []attribute.KeyValue{
		attribute.String("method", m.Method),
		attribute.String("endpoint", m.Endpoint),
		attribute.Int("status_code", m.StatusCode),
	}
	if m.ClientIPType != "" {
		attrs = append(attrs, attribute.String("client_ip_type", m.ClientIPType))
	}
	opt := metric.WithAttributes(attrs...)

	t.requestCounter.Add(ctx, 1, opt)
	t.durationHistogram.Record(ctx, m.Duration.Seconds(), opt)

	if m.Endpoint == "/token" && m.Method == "POST" {
		outcome := "success"
		if m.StatusCode >= 400 {
			outcome = "failure"
		}
		t.loginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}

	if m.StatusCode >= 400 {
		errAttrs := append(attrs, attribute.String("error_type", categorizeError(m.StatusCode)))
		t.errorCounter.Add(ctx, 1, metric.WithAttributes(errAttrs...))
		slog.Debug("Recorded API request error",
			"method", m.Method,
			"endpoint", m.Endpoint,
			"status_code", m.StatusCode,
			"client_ip", m.ClientIP,
			"error", m.ErrorMessage)
		return
	}

	t.recordEndpointSpecificMetrics(ctx, m)
}

func (t *APITelemetry) recordEndpointSpecificMetrics(ctx context.Context, m RequestMetrics) {
	switch {
	case strings.HasPrefix(m.Endpoint, "/cart/items"):
		t.cartMutationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("method", m.Method)))
	case strings.HasPrefix(m.Endpoint, "/wishlist/items"):
		t.wishlistMutationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("method", m.Method)))
	}
}

// categorizeError groups statuses to keep cardinality low
func categorizeError(statusCode int) string {
	switch statusCode {
	case 400, 422:
		return "invalid_request"
	case 401:
		return "unauthorized"
	case 403:
		return "forbidden"
	case 404:
		return "not_found"
	case 405:
		return "method_not_allowed"
	case 409:
		return "conflict"
	case 429:
		return "rate_limited"
	default:
		if statusCode >= 500 {
			return "internal_error"
		}
		return "other"
	}
}

// NormalizeClientIP buckets an IP as internal, localhost, external or invalid
func NormalizeClientIP(clientIP string) string {
	if clientIP == "" {
		return "unknown"
	}
	ip := net.ParseIP(clientIP)
	if ip == nil {
		return "invalid"
	}
	if ip.IsLoopback() {
		return "localhost"
	}
	if ip.IsPrivate() || ip.IsLinkLocalUnicast() {
		return "internal"
	}
	return "external"
}
