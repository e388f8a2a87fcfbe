package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	httpMeter              = otel.Meter("dynamite/http")
	httpRequestDuration, _ = httpMeter.Float64Histogram("http.server.route.duration",
		metric.WithDescription("HTTP request duration per route in seconds"),
		metric.WithUnit("s"),
	)
	httpRequestTotal, _ = httpMeter.Int64Counter("http.server.route.total",
		metric.WithDescription("Total HTTP requests per route"),
	)
)

// Tracing records per-route metrics and names the active server span after
// the matched mux pattern. It must sit outside the mux so the pattern is
// known once the request returns.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrapResponseWriter(w)
		req := r.WithContext(r.Context())
		next.ServeHTTP(wrapped, req)

		status := wrapped.status
		if status == 0 {
			status = http.StatusOK
		}

		route := req.Pattern
		if route == "" {
			route = "unmatched"
		}

		name := route
		if !strings.Contains(route, " ") {
			name = r.Method + " " + route
		}

		span := trace.SpanFromContext(req.Context())
		span.SetName(name)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		attrs := metric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		httpRequestDuration.Record(req.Context(), time.Since(start).Seconds(), attrs)
		httpRequestTotal.Add(req.Context(), 1, attrs)
	})
}
