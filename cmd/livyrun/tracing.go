package main

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// newTracerProvider creates a TracerProvider that writes spans to stdout.
// Shutdown is handled via fx.Lifecycle.
func newTracerProvider(lc fx.Lifecycle, logs *zap.Logger) (trace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
		logs.Debug("shutting down tracer provider")
		return tp.Shutdown(ctx)
	}})

	return tp, nil
}

// newTransport creates an HTTP RoundTripper instrumented with OpenTelemetry
// tracing, so every signed request the client sends creates a span.
func newTransport(tp trace.TracerProvider) http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(propagation.TraceContext{}),
	)
}
