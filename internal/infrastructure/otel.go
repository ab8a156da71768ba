package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"revpulse/internal/config"
	"revpulse/pkg/contracts"
)

// InstrumentationName names the tracer and meter used across the application
const InstrumentationName = "revpulse"

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *promclient.Registry
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel sets up tracing and metrics according to cfg. Disabled
// signals fall back to no-op implementations so callers never nil-check.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", contracts.Version),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := createResource(cfg)

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:  metricnoop.NewMeterProvider().Meter(InstrumentationName),
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

func createResource(cfg config.TelemetryConfig) *resource.Resource {
	env := cfg.Environment
	if env == "" {
		env = "development"
	}
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(contracts.Version),
		semconv.DeploymentEnvironmentName(env),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

func initializeTracing(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(contracts.Version))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

func initializeMetrics(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		// A private registry keeps repeated initialisation (tests, reloads)
		// from colliding on the process-wide default registerer.
		reg := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.Registry = reg
		providers.PrometheusHTTP = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(contracts.Version))
		otel.SetMeterProvider(mp)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))
	return nil
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// Metrics holds the application instruments
type Metrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	SourcesIngested     metric.Int64Counter
	RecordsIngested     metric.Int64Counter
	CoercionNulls       metric.Int64Counter
	DatasetBuilds       metric.Int64Counter
	DatasetCacheHits    metric.Int64Counter
	DatasetCacheMisses  metric.Int64Counter
	AggregationDuration metric.Float64Histogram

	WebSocketClients metric.Int64UpDownCounter
}

// NewMetrics creates the application instruments on meter. A nil meter
// yields no-op instruments.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(InstrumentationName)
	}

	var (
		m   Metrics
		err error
	)
	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = meter.Int64Counter(name, metric.WithDescription(desc))
		return c
	}
	histogram := func(name, desc string) metric.Float64Histogram {
		if err != nil {
			return nil
		}
		var h metric.Float64Histogram
		h, err = meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		return h
	}
	upDown := func(name, desc string) metric.Int64UpDownCounter {
		if err != nil {
			return nil
		}
		var u metric.Int64UpDownCounter
		u, err = meter.Int64UpDownCounter(name, metric.WithDescription(desc))
		return u
	}

	m.HTTPRequestsTotal = counter("http_requests_total", "Total number of HTTP requests")
	m.HTTPRequestDuration = histogram("http_request_duration_seconds", "HTTP request duration in seconds")
	m.HTTPActiveRequests = upDown("http_active_requests", "Number of active HTTP requests")
	m.SourcesIngested = counter("sources_ingested_total", "Sources processed by the loader, by outcome")
	m.RecordsIngested = counter("records_ingested_total", "Canonical records produced by normalization")
	m.CoercionNulls = counter("coercion_nulls_total", "Values that failed coercion and became null, by field")
	m.DatasetBuilds = counter("dataset_builds_total", "Dataset builds executed")
	m.DatasetCacheHits = counter("dataset_cache_hits_total", "Dataset cache hits")
	m.DatasetCacheMisses = counter("dataset_cache_misses_total", "Dataset cache misses")
	m.AggregationDuration = histogram("aggregation_duration_seconds", "Time spent filtering and aggregating")
	m.WebSocketClients = upDown("websocket_clients", "Connected WebSocket clients")

	if err != nil {
		return nil, fmt.Errorf("failed to create instruments: %w", err)
	}
	return &m, nil
}

// RecordHTTPRequest records one finished HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordActiveRequest adjusts the in-flight HTTP request gauge
func (m *Metrics) RecordActiveRequest(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.Add(ctx, delta)
}

// RecordSourceOutcome counts a source by its ingest outcome kind
func (m *Metrics) RecordSourceOutcome(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.SourcesIngested.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordNormalization counts produced records and per-field coercion nulls
func (m *Metrics) RecordNormalization(ctx context.Context, records int, nulls map[string]int) {
	if m == nil {
		return
	}
	m.RecordsIngested.Add(ctx, int64(records))
	for field, n := range nulls {
		if n > 0 {
			m.CoercionNulls.Add(ctx, int64(n), metric.WithAttributes(attribute.String("field", field)))
		}
	}
}

// RecordCacheLookup counts a dataset cache hit or miss
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.DatasetCacheHits.Add(ctx, 1)
		return
	}
	m.DatasetCacheMisses.Add(ctx, 1)
}

// RecordDatasetBuild counts a completed dataset build
func (m *Metrics) RecordDatasetBuild(ctx context.Context) {
	if m == nil {
		return
	}
	m.DatasetBuilds.Add(ctx, 1)
}

// RecordAggregation records the duration of one filter+aggregate pass
func (m *Metrics) RecordAggregation(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.AggregationDuration.Record(ctx, d.Seconds())
}

// RecordWebSocketClients adjusts the connected client gauge
func (m *Metrics) RecordWebSocketClients(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.WebSocketClients.Add(ctx, delta)
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts the OpenTelemetry trace ID from ctx
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
