package telemetry

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

/*
LEARNING: TRACING IS OPT-IN

A whiteboard usually runs on a laptop for a meeting, with no collector
around. Setup therefore does nothing unless tracing is enabled; the global
otel tracer stays a no-op and the middleware spans are free.

When enabled:
  board server → OpenTelemetry SDK → Jaeger exporter → collector → Jaeger UI
*/

// ServiceName identifies the board server in the Jaeger UI.
const ServiceName = "whiteboard"

// ShutdownFunc flushes pending spans.
type ShutdownFunc func(context.Context) error

// Setup initialises Jaeger when enabled and returns a shutdown func that is
// always safe to call.
func Setup(enabled bool, endpoint string) (ShutdownFunc, error) {
	if !enabled {
		log.Println("  Tracing disabled (set TRACING_ENABLED=true to export to Jaeger)")
		return func(context.Context) error { return nil }, nil
	}
	return InitJaeger(ServiceName, endpoint)
}

// InitJaeger installs a global tracer provider that batches spans to the
// Jaeger collector at endpoint.
func InitJaeger(serviceName, endpoint string) (ShutdownFunc, error) {
	exp, err := jaeger.New(
		jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Every ApplyUpdate span is kept; boards see a handful of edits per second.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)

	log.Printf("✓ Jaeger tracing initialized: %s", endpoint)
	return tp.Shutdown, nil
}
