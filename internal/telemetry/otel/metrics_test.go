package otel

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRequestMetrics_Record(t *testing.T) {
	ctx := context.Background()
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	defer func() { _ = mp.Shutdown(ctx) }()

	m, err := NewRequestMetrics(mp)
	if err != nil {
		t.Fatalf("NewRequestMetrics: %v", err)
	}
	m.Record(ctx, http.MethodPost, "/api/login", http.StatusOK, 20*time.Millisecond)
	m.Record(ctx, http.MethodPost, "/api/login", http.StatusOK, 10*time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var total int64
	var sawHistogram bool
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch data := md.Data.(type) {
			case metricdata.Sum[int64]:
				if md.Name == "portal.http.requests" {
					for _, dp := range data.DataPoints {
						total += dp.Value
					}
				}
			case metricdata.Histogram[float64]:
				if md.Name == "portal.http.duration" {
					sawHistogram = true
				}
			}
		}
	}
	if total != 2 {
		t.Errorf("request count = %d, want 2", total)
	}
	if !sawHistogram {
		t.Error("duration histogram not recorded")
	}
}

func TestRequestMetrics_NilSafe(t *testing.T) {
	var m *RequestMetrics
	m.Record(context.Background(), http.MethodGet, "/api/session", http.StatusOK, time.Millisecond)
}
