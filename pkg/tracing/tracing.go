// Package tracing sets up the OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"strings"
	"time"

	"go-resume-screener/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "go-resume-screener"

type Config struct {
	Enabled     bool
	ServiceName string
	Environment string
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// Init installs a global tracer provider and returns its shutdown func. When
// tracing is disabled the returned func is a no-op and the global no-op
// provider stays in place.
func Init(ctx context.Context, log *logger.Logger, cfg Config) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = instrumentationName
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", serviceName),
		attribute.String("deployment.environment", cfg.Environment),
	))
	if err != nil {
		log.Warn("otel resource init failed (continuing)", "error", err)
	}

	exporter, err := buildExporter(ctx, cfg)
	if err != nil {
		return noop, err
	}

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("otel tracing initialized", "service", serviceName, "endpoint", cfg.Endpoint)
	return tp.Shutdown, nil
}

func buildExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

// Tracer returns the package-wide tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
