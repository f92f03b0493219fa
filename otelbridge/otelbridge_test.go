package otelbridge_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/picotel/picotel/config"
	"github.com/picotel/picotel/otelbridge"
	picotrace "github.com/picotel/picotel/trace"
)

func setupTestTracer(t *testing.T) (*tracetest.InMemoryExporter, oteltrace.Tracer) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})
	return exporter, tp.Tracer("test")
}

func TestInitDisabledByDefault(t *testing.T) {
	p, err := otelbridge.Init(context.Background(), config.TracingConfig{})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	if p.ShouldPropagate() {
		t.Error("ShouldPropagate() = true, want false when tracing disabled")
	}

	// Tracer should return a no-op (no panic)
	_, span := p.Tracer().Start(context.Background(), "test")
	span.End()
}

func TestInitWithEndpoint(t *testing.T) {
	p, err := otelbridge.Init(context.Background(), config.TracingConfig{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		Protocol:    "grpc",
		ServiceName: "test-service",
		SampleRate:  1.0,
		Insecure:    true,
		Propagate:   true,
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	if !p.ShouldPropagate() {
		t.Error("ShouldPropagate() = false, want true when propagation enabled")
	}
}

func TestInitHTTPProtocol(t *testing.T) {
	p, err := otelbridge.Init(context.Background(), config.TracingConfig{
		Enabled:  true,
		Endpoint: "localhost:4318",
		Protocol: "http",
		Insecure: true,
	})
	if err != nil {
		t.Fatalf("Init() with http protocol error = %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
}

func TestInitUnsupportedProtocol(t *testing.T) {
	_, err := otelbridge.Init(context.Background(), config.TracingConfig{
		Enabled:  true,
		Endpoint: "localhost:4317",
		Protocol: "thrift",
		Insecure: true,
	})
	if err == nil {
		t.Fatal("Init() with unsupported protocol should return error")
	}
}

func TestInitInvalidSampleRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
	}{
		{"negative", -0.5},
		{"above one", 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := otelbridge.Init(context.Background(), config.TracingConfig{
				Enabled:    true,
				Endpoint:   "localhost:4317",
				Protocol:   "grpc",
				Insecure:   true,
				SampleRate: tt.rate,
			})
			if err == nil {
				t.Fatalf("Init() with sample_rate=%g should return error", tt.rate)
			}
		})
	}
}

func TestNilProviderSafety(t *testing.T) {
	var p *otelbridge.Provider
	if p.ShouldPropagate() {
		t.Error("nil provider ShouldPropagate() = true, want false")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("nil provider Shutdown() error = %v", err)
	}
	_, span := p.Tracer().Start(context.Background(), "test")
	span.End()
}

func TestExportSpansReplaysFinishedSpans(t *testing.T) {
	exporter, _ := setupTestTracer(t)

	root := picotrace.NewRoot("handle")
	root.SetKind(picotrace.KindServer)
	root.SetAttribute("http.route", "/orders")
	child := picotrace.NewChild("db.query", root)
	child.AddEvent("row_scan")
	child.End()
	root.End()
	active := picotrace.NewRoot("unfinished")

	bridgeWithTracer(t).ExportSpans(context.Background(), root, child, active)

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 replayed spans, got %d", len(spans))
	}

	byName := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = s
	}

	rootStub, ok := byName["handle"]
	if !ok {
		t.Fatalf("missing replayed root span")
	}
	if rootStub.SpanKind != oteltrace.SpanKindServer {
		t.Errorf("expected server kind, got %v", rootStub.SpanKind)
	}
	if rootStub.Status.Code != codes.Ok {
		t.Errorf("expected ok status, got %v", rootStub.Status.Code)
	}

	childStub, ok := byName["db.query"]
	if !ok {
		t.Fatalf("missing replayed child span")
	}
	if childStub.Parent.SpanID() != rootStub.SpanContext.SpanID() {
		t.Errorf("child not parented under root after replay")
	}
	if len(childStub.Events) != 1 || childStub.Events[0].Name != "row_scan" {
		t.Errorf("expected row_scan event, got %+v", childStub.Events)
	}
}

func TestExportSpansErrorStatus(t *testing.T) {
	exporter, _ := setupTestTracer(t)

	s := picotrace.NewRoot("fails")
	s.EndWithError("backend unavailable")

	bridgeWithTracer(t).ExportSpans(context.Background(), s)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status.Code)
	}
	if spans[0].Status.Description != "backend unavailable" {
		t.Errorf("expected error message, got %q", spans[0].Status.Description)
	}
}

func TestExportSpansPreservesTimestamps(t *testing.T) {
	exporter, _ := setupTestTracer(t)

	s := picotrace.NewRoot("timed")
	s.End()

	bridgeWithTracer(t).ExportSpans(context.Background(), s)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	wantStart := time.Unix(0, int64(s.StartNanos))
	if !spans[0].StartTime.Equal(wantStart) {
		t.Errorf("start time = %v, want %v", spans[0].StartTime, wantStart)
	}
}

func TestInjectHTTPHeaders(t *testing.T) {
	_, tracer := setupTestTracer(t)

	ctx, span := tracer.Start(context.Background(), "test-inject")
	defer span.End()

	headers := make(http.Header)
	otelbridge.InjectHTTPHeaders(ctx, headers)

	got := headers.Get("Traceparent")
	if got == "" {
		t.Error("traceparent header not injected")
	}
	if len(got) < 55 {
		t.Errorf("traceparent header too short: %q", got)
	}
}

func TestInjectSpanHeaders(t *testing.T) {
	s := picotrace.NewRoot("manual")
	headers := make(http.Header)
	otelbridge.InjectSpanHeaders(s, headers)

	got := headers.Get("Traceparent")
	if got != s.Traceparent() {
		t.Errorf("header %q, want %q", got, s.Traceparent())
	}
	if !strings.HasPrefix(got, "00-") || !strings.HasSuffix(got, "-01") {
		t.Errorf("malformed traceparent %q", got)
	}

	otelbridge.InjectSpanHeaders(nil, headers)
}

// bridgeWithTracer builds a provider whose tracer is the global test
// tracer installed by setupTestTracer.
func bridgeWithTracer(t *testing.T) *otelbridge.Provider {
	t.Helper()
	p, err := otelbridge.Init(context.Background(), config.TracingConfig{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return p
}
