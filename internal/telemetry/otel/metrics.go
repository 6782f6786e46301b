package otel

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RequestMetrics counts and times HTTP API requests.
type RequestMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewRequestMetrics registers the portal request instruments on provider.
func NewRequestMetrics(provider metric.MeterProvider) (*RequestMetrics, error) {
	meter := provider.Meter(instrumentationName)
	requests, err := meter.Int64Counter("portal.http.requests",
		metric.WithDescription("HTTP API requests by route and status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("portal.http.duration",
		metric.WithDescription("HTTP API request latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &RequestMetrics{requests: requests, duration: duration}, nil
}

// Record adds one request. route is the mux path template, not the raw path.
func (m *RequestMetrics) Record(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.String("http.response.status_code", strconv.Itoa(status)),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
