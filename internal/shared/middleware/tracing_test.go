package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestTracing_NamesSpanAfterRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer provider.Shutdown(t.Context())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/market/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, span := provider.Tracer("test").Start(t.Context(), "incoming", trace.WithSpanKind(trace.SpanKindServer))
	req := httptest.NewRequest(http.MethodGet, "/api/market/AAPL", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	Tracing(mux).ServeHTTP(rr, req)
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if got := ended[0].Name(); got != "GET /api/market/{symbol}" {
		t.Errorf("span name = %q, want %q", got, "GET /api/market/{symbol}")
	}
}

func TestTracing_Unmatched(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer provider.Shutdown(t.Context())

	ctx, span := provider.Tracer("test").Start(t.Context(), "incoming")
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil).WithContext(ctx)

	Tracing(http.NewServeMux()).ServeHTTP(httptest.NewRecorder(), req)
	span.End()

	if got := recorder.Ended()[0].Name(); got != "GET unmatched" {
		t.Errorf("span name = %q, want %q", got, "GET unmatched")
	}
}
