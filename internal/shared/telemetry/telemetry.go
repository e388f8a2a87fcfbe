// Package telemetry configures OpenTelemetry export and the process logger.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

type Config struct {
	ServiceName  string
	Environment  string
	OTLPEndpoint string // host:port of an OTLP gRPC collector; empty disables trace export
	MetricsPort  string
}

// ShutdownFunc flushes exporters and stops the metrics listener
type ShutdownFunc func(context.Context) error

// Init installs global meter and tracer providers, starts the Prometheus
// listener, and returns the function that tears all of it down. On error the
// returned ShutdownFunc still releases whatever was started.
func Init(ctx context.Context, cfg Config, logger *zap.Logger) (ShutdownFunc, error) {
	var closers []ShutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i](ctx))
		}
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("telemetry shutdown: %w", err)
		}
		return nil
	}

	res, err := newResource(cfg)
	if err != nil {
		return shutdown, err
	}

	mp, err := newMeterProvider(res)
	if err != nil {
		return shutdown, err
	}
	otel.SetMeterProvider(mp)
	closers = append(closers, mp.Shutdown)

	tp, err := newTracerProvider(ctx, cfg.OTLPEndpoint, res)
	if err != nil {
		return shutdown, err
	}
	otel.SetTracerProvider(tp)
	closers = append(closers, tp.Shutdown)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	srv := metricsServer(cfg.MetricsPort)
	closers = append(closers, srv.Shutdown)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener stopped", zap.Error(err))
		}
	}()

	logger.Info("telemetry started",
		zap.String("service", cfg.ServiceName),
		zap.String("metrics_addr", srv.Addr),
		zap.String("otlp_endpoint", cfg.OTLPEndpoint),
	)
	return shutdown, nil
}

func newResource(cfg Config) (*resource.Resource, error) {
	// Schemaless so the merge takes the SDK default's schema URL whatever its version.
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// newMeterProvider exports through the default Prometheus registry, which
// promhttp.Handler serves.
func newMeterProvider(res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	), nil
}

func newTracerProvider(ctx context.Context, endpoint string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}
	if endpoint != "" {
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func metricsServer(port string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}
