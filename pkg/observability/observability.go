// Package observability wires OpenTelemetry tracing and metrics for tagpool.
//
// Setup builds tracer and meter providers from a Config. MeterHooks exports
// registry events as otel instruments, and PoolTracer wraps simulation work
// in spans.
//
//	p, err := observability.Setup(ctx, observability.DefaultConfig())
//	defer p.Shutdown(ctx)
//	hooks, _ := observability.NewMeterHooks(p.Meter("tagpool"))
//	reg := pool.New(entries, pool.WithHooks(hooks))
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Exporter names accepted by Config.
const (
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Config contains tracing and metrics configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// SampleRate is the fraction of root spans sampled, 0..1
	SampleRate float64
	// TraceExporter is "stdout" or "none"
	TraceExporter string
	// MetricExporter is "stdout" or "none"
	MetricExporter string
	// Writer receives stdout exporter output. Defaults to os.Stdout.
	Writer       io.Writer
	BatchTimeout time.Duration
}

// DefaultConfig returns a configuration that samples everything and exports
// nothing.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "tagpool",
		ServiceVersion: "dev",
		Environment:    getEnv("ENVIRONMENT", "development"),
		SampleRate:     1.0,
		TraceExporter:  getEnv("TRACING_EXPORTER", ExporterNone),
		MetricExporter: ExporterNone,
		BatchTimeout:   5 * time.Second,
	}
}

// Option adjusts Setup.
type Option func(*setupOptions)

type setupOptions struct {
	spanProcessors []sdktrace.SpanProcessor
	readers        []sdkmetric.Reader
}

// WithSpanProcessor registers an additional span processor, such as a
// tracetest.SpanRecorder.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *setupOptions) {
		o.spanProcessors = append(o.spanProcessors, sp)
	}
}

// WithMetricReader registers an additional metric reader, such as a manual
// reader.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(o *setupOptions) {
		o.readers = append(o.readers, r)
	}
}

// Provider holds the tracer and meter providers built by Setup.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	shutdownFuncs  []func(context.Context) error
}

// Setup builds the tracer and meter providers. It does not touch the otel
// globals; call Install for that.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*Provider, error) {
	var o setupOptions
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "tagpool"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	p := &Provider{}

	traceOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	}
	switch cfg.TraceExporter {
	case ExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Writer), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(cfg.BatchTimeout)))
	case ExporterNone, "":
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.TraceExporter)
	}
	for _, sp := range o.spanProcessors {
		traceOpts = append(traceOpts, sdktrace.WithSpanProcessor(sp))
	}
	p.tracerProvider = sdktrace.NewTracerProvider(traceOpts...)
	p.shutdownFuncs = append(p.shutdownFuncs, p.tracerProvider.Shutdown)

	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	switch cfg.MetricExporter {
	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
		}
		meterOpts = append(meterOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	case ExporterNone, "":
	default:
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("unknown metric exporter %q", cfg.MetricExporter)
	}
	for _, r := range o.readers {
		meterOpts = append(meterOpts, sdkmetric.WithReader(r))
	}
	p.meterProvider = sdkmetric.NewMeterProvider(meterOpts...)
	p.shutdownFuncs = append(p.shutdownFuncs, p.meterProvider.Shutdown)

	return p, nil
}

// Install makes p the global tracer and meter provider and sets the W3C
// propagators.
func (p *Provider) Install() {
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetMeterProvider(p.meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// TracerProvider returns the tracer provider.
func (p *Provider) TracerProvider() trace.TracerProvider {
	return p.tracerProvider
}

// Meter returns a meter from the meter provider.
func (p *Provider) Meter(name string) metric.Meter {
	return p.meterProvider.Meter(name)
}

// Shutdown flushes and stops every provider. It is safe to call twice.
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error
	for _, fn := range p.shutdownFuncs {
		err = errors.Join(err, fn(ctx))
	}
	p.shutdownFuncs = nil
	return err
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0:
		return sdktrace.NeverSample()
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// getEnv gets environment variable with default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
