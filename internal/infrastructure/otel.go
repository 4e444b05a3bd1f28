package infrastructure

import (
	"context"
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
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

// MeterName is the instrumentation scope for every dashboard instrument
const MeterName = "malnutrition-dashboard"

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a metrics-only configuration
func DefaultOTelConfig(serviceName, version string) *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    env,
		EnableMetrics:  true,
		EnableTracing:  false,
		SampleRatio:    1.0,
	}
}

// InitializeOTel sets up the meter provider backed by a private Prometheus
// registry and, when enabled, a stdout tracer.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig(MeterName, "dev")
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	providers := &OTelProviders{Logger: logger}

	if cfg.EnableTracing {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
		)
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetTracerProvider(tp)
	} else {
		providers.Tracer = otel.Tracer(MeterName)
	}

	if cfg.EnableMetrics {
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		otel.SetMeterProvider(mp)
	} else {
		providers.Meter = otel.Meter(MeterName)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
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
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// DashboardMetrics are the instruments recorded by the HTTP layer and the
// dashboard services
type DashboardMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	DatasetRowsLoaded     metric.Int64Counter
	BoundaryFetchFailures metric.Int64Counter
	ReconcileMappings     metric.Int64Counter
	PanelRenders          metric.Int64Counter
	PanelRenderDuration   metric.Float64Histogram
	ChartCacheHits        metric.Int64Counter
	ChartCacheMisses      metric.Int64Counter
}

// CreateDashboardMetrics registers the dashboard instruments on meter
func CreateDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	m := &DashboardMetrics{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests", "{request}"},
		{&m.DatasetRowsLoaded, "dataset_rows_loaded_total", "Survey rows kept after the growth status filter", "{row}"},
		{&m.BoundaryFetchFailures, "boundary_fetch_failures_total", "Boundary documents that could not be loaded", "{failure}"},
		{&m.ReconcileMappings, "reconcile_mappings_total", "Place names remapped to a boundary name", "{mapping}"},
		{&m.PanelRenders, "panel_renders_total", "Dashboard panels computed", "{render}"},
		{&m.ChartCacheHits, "chart_cache_hits_total", "Rendered chart cache hits", "{hit}"},
		{&m.ChartCacheMisses, "chart_cache_misses_total", "Rendered chart cache misses", "{miss}"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", c.name, err)
		}
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds: %w", err)
	}

	m.PanelRenderDuration, err = meter.Float64Histogram(
		"panel_render_duration_seconds",
		metric.WithDescription("Time spent computing a dashboard panel"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create panel_render_duration_seconds: %w", err)
	}

	return m, nil
}

// RecordPanelRender records one panel computation
func (m *DashboardMetrics) RecordPanelRender(ctx context.Context, panel string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("panel", panel), attribute.String("status", status))
	m.PanelRenders.Add(ctx, 1, attrs)
	m.PanelRenderDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordChartCache records a chart cache lookup
func (m *DashboardMetrics) RecordChartCache(ctx context.Context, chart string, hit bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("chart", chart))
	if hit {
		m.ChartCacheHits.Add(ctx, 1, attrs)
		return
	}
	m.ChartCacheMisses.Add(ctx, 1, attrs)
}

// RecordBoundaryFailure counts a boundary document that failed to load
func (m *DashboardMetrics) RecordBoundaryFailure(ctx context.Context, level string) {
	if m == nil {
		return
	}
	m.BoundaryFetchFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("level", level)))
}

// RecordMappings counts reconciled names for a level, split by match method
func (m *DashboardMetrics) RecordMappings(ctx context.Context, level string, byMethod map[string]int) {
	if m == nil {
		return
	}
	for method, n := range byMethod {
		m.ReconcileMappings.Add(ctx, int64(n), metric.WithAttributes(
			attribute.String("level", level),
			attribute.String("method", method),
		))
	}
}

// RecordRowsLoaded counts the rows kept by the loader
func (m *DashboardMetrics) RecordRowsLoaded(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.DatasetRowsLoaded.Add(ctx, int64(rows))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceIDFromContext extracts the OTel trace ID for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
