package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/ajitpratap0/tagpool"

// PoolTracer starts spans for one registry session.
type PoolTracer struct {
	tracer  trace.Tracer
	session string
}

// NewPoolTracer creates a tracer for session. A nil provider uses the global
// one.
func NewPoolTracer(tp trace.TracerProvider, session string) *PoolTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &PoolTracer{
		tracer:  tp.Tracer(instrumentationName),
		session: session,
	}
}

// Start starts a span named "tagpool.<operation>" carrying the session name.
func (t *PoolTracer) Start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("tagpool.session", t.session))
	return t.tracer.Start(ctx, "tagpool."+operation, trace.WithAttributes(attrs...))
}

// TraceRound runs fn inside a "tagpool.round" span. An error from fn is
// recorded on the span and returned unchanged.
func (t *PoolTracer) TraceRound(ctx context.Context, round int, fn func(ctx context.Context) error) error {
	ctx, span := t.Start(ctx, "round", attribute.Int("tagpool.round", round))
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// LoggerWithTrace adds trace_id and span_id fields to l when ctx carries a
// valid span.
func LoggerWithTrace(ctx context.Context, l *zap.Logger) *zap.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
