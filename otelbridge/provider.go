// Package otelbridge initializes OpenTelemetry export and replays
// finished spans through an OTel tracer.
package otelbridge

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/picotel/picotel/config"
)

const tracerName = "picotel"

// Provider wraps the OTel TracerProvider and provides convenience methods.
type Provider struct {
	tp        *sdktrace.TracerProvider
	tracer    trace.Tracer
	propagate bool
}

// Init creates an OTel TracerProvider from config. Returns a no-op
// provider if tracing is disabled or no endpoint resolves from the
// configuration and environment.
func Init(ctx context.Context, cfg config.TracingConfig) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}
	endpoint := cfg.ResolveEndpoint()
	if endpoint == "" {
		return &Provider{propagate: cfg.ShouldPropagate()}, nil
	}

	sampler, err := samplerFor(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ResolveServiceName(tracerName))),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	exporter, err := newExporter(ctx, cfg, endpoint)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{
		tp:        tp,
		tracer:    tp.Tracer(tracerName),
		propagate: cfg.ShouldPropagate(),
	}, nil
}

// Tracer returns the configured tracer. Returns a no-op tracer if
// tracing is disabled.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tracer == nil {
		return noop.NewTracerProvider().Tracer(tracerName)
	}
	return p.tracer
}

// ShouldPropagate returns whether W3C trace headers should be injected.
func (p *Provider) ShouldPropagate() bool {
	if p == nil {
		return false
	}
	return p.propagate
}

// Shutdown flushes pending spans and shuts down the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// samplerFor maps the configured ratio onto a head sampler: 0 never
// samples, 1 always samples, values in between sample by trace-id
// ratio. The sampler is wrapped in ParentBased by the caller.
func samplerFor(rate float64) (sdktrace.Sampler, error) {
	switch {
	case rate < 0 || rate > 1.0:
		return nil, fmt.Errorf("tracing sample_rate must be between 0.0 and 1.0, got %g", rate)
	case rate == 0:
		return sdktrace.NeverSample(), nil
	case rate < 1.0:
		return sdktrace.TraceIDRatioBased(rate), nil
	default:
		return sdktrace.AlwaysSample(), nil
	}
}

func newExporter(ctx context.Context, cfg config.TracingConfig, endpoint string) (sdktrace.SpanExporter, error) {
	protocol := strings.ToLower(cfg.Protocol)
	if protocol == "" {
		protocol = "grpc"
	}

	switch protocol {
	case "grpc":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(endpoint),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)

	case "http":
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(endpoint),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q: use \"grpc\" or \"http\"", protocol)
	}
}
