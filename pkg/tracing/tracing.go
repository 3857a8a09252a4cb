// Package tracing wraps one compile in an OpenTelemetry span, exported
// either to stdout (local development) or via OTLP/gRPC (production).
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/alanrodas/gobstones-compiler/pkg/config"
)

// Provider wraps the SDK tracer provider so callers can shut it down
// cleanly on exit.
type Provider struct {
	sdk    *sdktrace.TracerProvider
	tracer trace.Tracer
}

// Init builds a Provider from cfg. cfg.Tracing.Exporter "otlp" exports
// over gRPC to cfg.Tracing.OTLPEndpoint; anything else falls back to
// stdout.
func Init(ctx context.Context, cfg config.Config) (*Provider, error) {
	var exporter sdktrace.SpanExporter
	var err error

	if cfg.Tracing.Exporter == config.TracingOTLP {
		client := otlptracegrpc.NewClient(otlptracegrpc.WithEndpoint(cfg.Tracing.OTLPEndpoint), otlptracegrpc.WithInsecure())
		exporter, err = otlptrace.New(ctx, client)
	} else {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	if err != nil {
		return nil, fmt.Errorf("tracing: building exporter: %w", err)
	}

	sdk := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(sdk)

	return &Provider{sdk: sdk, tracer: sdk.Tracer("gobstones-compiler")}, nil
}

// Shutdown flushes and releases the underlying exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.sdk.Shutdown(ctx)
}

// StartCompile opens a span around one compile invocation, tagged with
// the source hash. RecordResult adds the emitted instruction count and
// ends the span.
func (p *Provider) StartCompile(ctx context.Context, sourceHash string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "compile", trace.WithAttributes(attribute.String("source.hash", sourceHash)))
}

// RecordResult annotates span with the outcome of a compile and ends it.
func RecordResult(span trace.Span, instructionCount int, err error) {
	span.SetAttributes(attribute.Int("instructions.count", instructionCount))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
