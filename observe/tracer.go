package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ProbeMeta contains metadata about a probe for telemetry purposes.
// A probe is any instrumented unit of work in the subsystem: a health
// check execution, a queue correlation stage, a trim sweep.
type ProbeMeta struct {
	Component string // Owning component (e.g. "health", "track"); may be empty
	Name      string // Probe name (required)
	Version   string // Component version (optional)
}

// SpanName returns the deterministic span name for this probe.
// Format: probe.exec.<component>.<name> or probe.exec.<name>
func (m ProbeMeta) SpanName() string {
	if m.Component != "" {
		return "probe.exec." + m.Component + "." + m.Name
	}
	return "probe.exec." + m.Name
}

// Validate checks that the metadata is usable for telemetry.
func (m ProbeMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingProbeName
	}
	return nil
}

// ProbeID returns the fully qualified probe identifier.
func (m ProbeMeta) ProbeID() string {
	if m.Component != "" {
		return m.Component + "." + m.Name
	}
	return m.Name
}

// Tracer wraps OpenTelemetry tracing with probe-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a probe execution.
	StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with probe metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("probe.id", meta.ProbeID()),
		attribute.String("probe.name", meta.Name),
		attribute.Bool("probe.error", false), // Will be updated in EndSpan if error
	}

	if meta.Component != "" {
		attrs = append(attrs, attribute.String("probe.component", meta.Component))
	}
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("probe.version", meta.Version))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("probe.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
