package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"docverify-portal/internal/telemetry"
)

const tracerName = "docverify-portal/internal/server"

// httpRequestMetadata is the JSON shape stored in Event.Metadata for http_request events.
type httpRequestMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	StatusCode int    `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// RequestRecorder records one served request; *otel.RequestMetrics implements it.
type RequestRecorder interface {
	Record(ctx context.Context, method, route string, status int, elapsed time.Duration)
}

// Telemetry returns middleware that traces each request, records request
// metrics and emits an http_request event. skip holds "METHOD /template" keys
// to leave out of the event stream. emitter and metrics may be nil.
func Telemetry(emitter telemetry.EventEmitter, metrics RequestRecorder, skip map[string]bool) mux.MiddlewareFunc {
	tracer := otel.Tracer(tracerName)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			template := routeTemplate(r)
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+template,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("http.route", template),
				),
			)
			defer span.End()

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			elapsed := time.Since(start)
			span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
			if metrics != nil {
				metrics.Record(ctx, r.Method, template, rec.status, elapsed)
			}
			if emitter == nil || skip[r.Method+" "+template] {
				return
			}
			meta, _ := json.Marshal(httpRequestMetadata{
				Method:     r.Method,
				Route:      template,
				StatusCode: rec.status,
				DurationMs: elapsed.Milliseconds(),
				ClientIP:   ClientIPFromContext(r.Context()),
			})
			userID, _ := GetUserID(r.Context())
			sessionID, _ := GetSessionID(r.Context())
			telemetry.EmitAsync(emitter, ctx, &telemetry.Event{
				Type:      telemetry.EventHTTPRequest,
				SessionID: sessionID,
				UserEmail: userID,
				Source:    telemetry.SourceMiddleware,
				Metadata:  meta,
				CreatedAt: time.Now().UTC(),
			})
		})
	}
}
