package otelbridge

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"google.golang.org/grpc/metadata"

	picotrace "github.com/picotel/picotel/trace"
)

// InjectHTTPHeaders injects W3C trace context from ctx into HTTP headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// ExtractHTTPHeaders returns a context carrying any W3C trace context
// found in the headers.
func ExtractHTTPHeaders(ctx context.Context, headers http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// InjectSpanHeaders stamps the span's traceparent onto HTTP headers.
// Unlike InjectHTTPHeaders this needs no OTel context and works for
// spans that were never replayed through a tracer.
func InjectSpanHeaders(s *picotrace.Span, headers http.Header) {
	if s == nil {
		return
	}
	headers.Set("traceparent", s.Traceparent())
}

// grpcMetadataCarrier adapts grpc metadata.MD to the OTel TextMapCarrier interface.
type grpcMetadataCarrier metadata.MD

func (c grpcMetadataCarrier) Get(key string) string {
	vals := metadata.MD(c).Get(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (c grpcMetadataCarrier) Set(key, value string) {
	metadata.MD(c).Set(key, value)
}

func (c grpcMetadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// InjectGRPCMetadata injects W3C trace context into gRPC metadata.
func InjectGRPCMetadata(ctx context.Context, md metadata.MD) {
	otel.GetTextMapPropagator().Inject(ctx, grpcMetadataCarrier(md))
}
