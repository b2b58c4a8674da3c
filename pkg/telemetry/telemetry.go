// Package telemetry wires the OpenTelemetry pipeline that carries
// relicdb's storage and execution metrics: a Prometheus-exported meter
// provider with views tuned for the engine's instruments, and a
// ratio-sampled tracer for statement spans.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	internaltelemetry "github.com/sushant-115/relicdb/internal/telemetry"
)

// Config holds the telemetry configuration of an instance.
type Config struct {
	// Enabled toggles the pipeline. When false, New returns no-op
	// components and the engine's metric call sites record nothing.
	Enabled bool `yaml:"enabled"`
	// ServiceName identifies this instance in exported metrics and traces.
	ServiceName string `yaml:"service_name"`
	// PrometheusPort is the port serving the /metrics scrape endpoint.
	PrometheusPort int `yaml:"prometheus_port"`
	// TraceSampleRatio is the fraction of statements to trace.
	// Values outside (0, 1] mean trace everything.
	TraceSampleRatio float64 `yaml:"trace_sample_ratio"`
}

// Provider owns the instance's telemetry components. Meter and Tracer
// are always usable; when the pipeline is disabled they are no-ops.
type Provider struct {
	Meter  metric.Meter
	Tracer trace.Tracer

	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	scrapeServer   *http.Server
}

// New builds the telemetry pipeline for one instance.
func New(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{
			Meter:  noop.NewMeterProvider().Meter(""),
			Tracer: nooptrace.NewTracerProvider().Tracer(""),
		}, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("building telemetry resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
		sdkmetric.WithView(statementLatencyView()),
	)

	// Serve /metrics on a dedicated mux so the scrape endpoint never
	// collides with an embedding application's handlers.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	scrapeServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.PrometheusPort),
		Handler: mux,
	}
	go func() {
		if err := scrapeServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			otel.Handle(fmt.Errorf("prometheus scrape server failed: %w", err))
		}
	}()

	sampleRatio := cfg.TraceSampleRatio
	if sampleRatio <= 0 || sampleRatio > 1 {
		sampleRatio = 1.0
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(sampleRatio)),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &Provider{
		Meter:          meterProvider.Meter(cfg.ServiceName),
		Tracer:         tracerProvider.Tracer(cfg.ServiceName),
		meterProvider:  meterProvider,
		tracerProvider: tracerProvider,
		scrapeServer:   scrapeServer,
	}, nil
}

// StorageMetrics registers the engine's instrument set on this
// provider's meter.
func (p *Provider) StorageMetrics() (*internaltelemetry.StorageMetrics, error) {
	return internaltelemetry.NewStorageMetrics(p.Meter)
}

// Shutdown stops the scrape endpoint and flushes both providers. Safe
// to call on a disabled provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if p.scrapeServer != nil {
		if err := p.scrapeServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("stopping scrape server: %w", err)
		}
	}
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down tracer provider: %w", err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down meter provider: %w", err)
		}
	}
	return nil
}

// statementLatencyView pins millisecond bucket boundaries suited to
// single-statement work; the SDK default buckets are far too coarse at
// the low end for an embedded engine.
func statementLatencyView() sdkmetric.View {
	return sdkmetric.NewView(
		sdkmetric.Instrument{Name: internaltelemetry.StatementLatencyName},
		sdkmetric.Stream{
			Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
				Boundaries: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		},
	)
}
