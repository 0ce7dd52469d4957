// Package observability provides OpenTelemetry tracing for pathlight.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of every pathlight span.
const TracerName = "github.com/vanshika/pathlight"

// tracer delegates to whichever provider InitTracing installs, so spans
// started before or without InitTracing are no-ops.
var tracer = otel.Tracer(TracerName)

// TracingConfig configures span export. An empty OTLPEndpoint disables it.
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Backend        string
	OTLPEndpoint   string
	// SampleRate applies to root spans; child spans follow their parent.
	SampleRate float64
}

// TracerProvider owns the SDK provider installed by InitTracing.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// InitTracing installs a batching OTLP gRPC provider and the W3C
// propagators. Without an endpoint it installs nothing.
func InitTracing(ctx context.Context, cfg *TracingConfig) (*TracerProvider, error) {
	if cfg == nil || cfg.OTLPEndpoint == "" {
		return &TracerProvider{}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), serviceResource(cfg))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return &TracerProvider{provider: provider}, nil
}

func serviceResource(cfg *TracingConfig) *resource.Resource {
	name := cfg.ServiceName
	if name == "" {
		name = "pathlight"
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceName(name),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}
	if cfg.Backend != "" {
		attrs = append(attrs, attribute.String("pathlight.backend", cfg.Backend))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}

// sampler keeps whole traces together: the rate only decides for roots.
func sampler(rate float64) sdktrace.Sampler {
	if rate >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(max(rate, 0)))
}

// Shutdown flushes and stops the tracer provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider != nil {
		return tp.provider.Shutdown(ctx)
	}
	return nil
}

// Enabled reports whether spans are exported.
func (tp *TracerProvider) Enabled() bool {
	return tp.provider != nil
}

// StartRequestSpan continues the caller's trace, if any, with a server span
// for one explorer request.
func StartRequestSpan(ctx context.Context, header http.Header, method, path string) (context.Context, trace.Span) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(header))
	return tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
}

// EndRequestSpan records the response status and ends span.
func EndRequestSpan(span trace.Span, status int, requestID string) {
	span.SetAttributes(
		attribute.Int("http.response.status_code", status),
		attribute.String("pathlight.request_id", requestID),
	)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
	span.End()
}

// InjectHeaders writes the current trace context into outgoing headers.
func InjectHeaders(ctx context.Context, header http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
}

// StartQuerySpan starts a client span for a call to the graph backend.
func StartQuerySpan(ctx context.Context, op, graph string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "graph."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("pathlight.graph", graph),
			attribute.String("pathlight.op", op),
		),
	)
}

// StartPlaylistSpan starts a span for one playlist synthesis.
func StartPlaylistSpan(ctx context.Context, algorithm, seed string, count int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "playlist."+algorithm,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("playlist.algorithm", algorithm),
			attribute.String("playlist.seed", seed),
			attribute.Int("playlist.count", count),
		),
	)
}

// EndSpan records err, when set, and ends span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
