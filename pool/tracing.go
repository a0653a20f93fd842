package pool

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/utkarsh5026/tpool/pool"

func newTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return tp.Tracer(tracerName)
}

// startTaskSpan opens the span covering one task execution on a worker.
func (p *ThreadPool) startTaskSpan(ctx context.Context, workerID, priority int) trace.Span {
	_, span := p.tracer.Start(ctx, "tpool.task",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("tpool.pool", p.id),
			attribute.Int("tpool.worker", workerID),
			attribute.Int("tpool.priority", priority),
			attribute.String("tpool.queue", p.kind.String()),
		),
	)
	return span
}

func endTaskSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
