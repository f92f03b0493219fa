package otelbridge

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	picotrace "github.com/picotel/picotel/trace"
)

// ExportSpans replays finished spans through the provider's tracer so
// they reach the configured OTLP exporter. Unfinished spans are
// skipped. Parent relationships within the batch are preserved by
// replaying parents before their children.
func (p *Provider) ExportSpans(ctx context.Context, spans ...*picotrace.Span) {
	var tracer oteltrace.Tracer
	if p != nil && p.tracer != nil {
		tracer = p.tracer
	} else {
		// Disabled providers replay through whatever tracer provider
		// is installed globally.
		tracer = otel.Tracer(tracerName)
	}

	contexts := make(map[uint64]context.Context, len(spans))
	pending := spans
	for len(pending) > 0 {
		var next []*picotrace.Span
		progressed := false
		for _, s := range pending {
			if s == nil || s.EndNanos == 0 {
				progressed = true
				continue
			}
			parentCtx := ctx
			if s.ParentSpanID != 0 {
				pc, ok := contexts[s.ParentSpanID]
				if !ok {
					// Parent may come later in the batch.
					if hasPending(pending, s.ParentSpanID) {
						next = append(next, s)
						continue
					}
				} else {
					parentCtx = pc
				}
			}
			contexts[s.SpanID] = replay(parentCtx, tracer, s)
			progressed = true
		}
		if !progressed {
			break
		}
		pending = next
	}
}

func hasPending(spans []*picotrace.Span, spanID uint64) bool {
	for _, s := range spans {
		if s != nil && s.SpanID == spanID && s.EndNanos != 0 {
			return true
		}
	}
	return false
}

func replay(ctx context.Context, tracer oteltrace.Tracer, s *picotrace.Span) context.Context {
	opts := []oteltrace.SpanStartOption{
		oteltrace.WithTimestamp(time.Unix(0, int64(s.StartNanos))),
		oteltrace.WithSpanKind(kindToOTel(s.Kind)),
	}
	if len(s.Attributes) > 0 {
		attrs := make([]attribute.KeyValue, 0, len(s.Attributes))
		for k, v := range s.Attributes {
			attrs = append(attrs, attribute.String(k, v))
		}
		opts = append(opts, oteltrace.WithAttributes(attrs...))
	}

	spanCtx, sp := tracer.Start(ctx, s.Name, opts...)

	for _, ev := range s.Events {
		evOpts := []oteltrace.EventOption{
			oteltrace.WithTimestamp(time.Unix(0, int64(ev.TimeNanos))),
		}
		if len(ev.Attributes) > 0 {
			attrs := make([]attribute.KeyValue, 0, len(ev.Attributes))
			for k, v := range ev.Attributes {
				attrs = append(attrs, attribute.String(k, v))
			}
			evOpts = append(evOpts, oteltrace.WithAttributes(attrs...))
		}
		sp.AddEvent(ev.Name, evOpts...)
	}

	switch s.Status {
	case picotrace.StatusError:
		sp.SetStatus(codes.Error, s.Attributes["error.message"])
	case picotrace.StatusOK:
		sp.SetStatus(codes.Ok, "")
	}

	sp.End(oteltrace.WithTimestamp(time.Unix(0, int64(s.EndNanos))))
	return spanCtx
}

func kindToOTel(k picotrace.Kind) oteltrace.SpanKind {
	switch k {
	case picotrace.KindServer:
		return oteltrace.SpanKindServer
	case picotrace.KindClient:
		return oteltrace.SpanKindClient
	case picotrace.KindProducer:
		return oteltrace.SpanKindProducer
	case picotrace.KindConsumer:
		return oteltrace.SpanKindConsumer
	default:
		return oteltrace.SpanKindInternal
	}
}
