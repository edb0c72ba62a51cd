package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsCollector manages all metrics for dmdesk. The zero value is a
// disabled collector; every Record method is a no-op on it.
type MetricsCollector struct {
	meter    metric.Meter
	provider *sdkmetric.MeterProvider
	registry *promclient.Registry

	// Workflow metrics
	lookups         metric.Int64Counter
	lookupLatency   metric.Float64Histogram
	deliveries      metric.Int64Counter
	deliveryLatency metric.Float64Histogram
	requests        metric.Int64Counter

	// Remote API metrics
	remoteCalls   metric.Int64Counter
	remoteLatency metric.Float64Histogram

	// HTTP server metrics
	httpRequests metric.Int64Counter
	httpLatency  metric.Float64Histogram
	httpBytes    metric.Int64Counter

	prometheusServer *http.Server
}

// MetricsConfig configures the metrics collector
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled" yaml:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port" yaml:"prometheus_port"`
}

// NewMetricsCollector creates a new metrics collector backed by a private
// Prometheus registry. It does not start the scrape server; see
// StartPrometheusServer.
func NewMetricsCollector(config MetricsConfig) (*MetricsCollector, error) {
	if !config.Enabled {
		return &MetricsCollector{}, nil
	}

	registry := promclient.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("dmdesk")

	m := &MetricsCollector{meter: meter, provider: provider, registry: registry}

	if m.lookups, err = meter.Int64Counter(
		"dmdesk.lookup.requests.total",
		metric.WithDescription("Handle lookups by outcome"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create lookup counter: %w", err)
	}
	if m.lookupLatency, err = meter.Float64Histogram(
		"dmdesk.lookup.latency",
		metric.WithDescription("Handle lookup latency in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create lookup latency histogram: %w", err)
	}
	if m.deliveries, err = meter.Int64Counter(
		"dmdesk.delivery.requests.total",
		metric.WithDescription("Direct message sends by outcome"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create delivery counter: %w", err)
	}
	if m.deliveryLatency, err = meter.Float64Histogram(
		"dmdesk.delivery.latency",
		metric.WithDescription("Direct message send latency in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create delivery latency histogram: %w", err)
	}
	if m.requests, err = meter.Int64Counter(
		"dmdesk.requests.total",
		metric.WithDescription("Operator requests by final outcome"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	if m.remoteCalls, err = meter.Int64Counter(
		"dmdesk.remote.calls.total",
		metric.WithDescription("Calls to the remote API by operation and error class"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create remote call counter: %w", err)
	}
	if m.remoteLatency, err = meter.Float64Histogram(
		"dmdesk.remote.latency",
		metric.WithDescription("Remote API call latency in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create remote latency histogram: %w", err)
	}
	if m.httpRequests, err = meter.Int64Counter(
		"dmdesk.http.server.requests.total",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http request counter: %w", err)
	}
	if m.httpLatency, err = meter.Float64Histogram(
		"dmdesk.http.server.latency",
		metric.WithDescription("HTTP request latency in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http latency histogram: %w", err)
	}
	if m.httpBytes, err = meter.Int64Counter(
		"dmdesk.http.server.response.bytes",
		metric.WithDescription("HTTP response bytes written"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http bytes counter: %w", err)
	}

	return m, nil
}

// Enabled reports whether the collector records anything.
func (m *MetricsCollector) Enabled() bool {
	return m != nil && m.registry != nil
}

// Handler serves the Prometheus exposition for this collector.
func (m *MetricsCollector) Handler() http.Handler {
	if !m.Enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartPrometheusServer starts the Prometheus metrics server in the background
func (m *MetricsCollector) StartPrometheusServer(port int, logger *Logger) {
	if !m.Enabled() || port <= 0 {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	m.prometheusServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Prometheus metrics server listening", "port", port)
		if err := m.prometheusServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Prometheus server error", "error", err)
		}
	}()
}

// Shutdown gracefully shuts down the metrics collector
func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	var errs []error
	if m.prometheusServer != nil {
		errs = append(errs, m.prometheusServer.Shutdown(ctx))
	}
	if m.provider != nil {
		errs = append(errs, m.provider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// RecordLookup records one handle resolution.
func (m *MetricsCollector) RecordLookup(ctx context.Context, outcome string, latency time.Duration) {
	if m == nil || m.lookups == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.lookups.Add(ctx, 1, attrs)
	m.lookupLatency.Record(ctx, latency.Seconds(), attrs)
}

// RecordDelivery records one send attempt.
func (m *MetricsCollector) RecordDelivery(ctx context.Context, outcome string, latency time.Duration) {
	if m == nil || m.deliveries == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.deliveries.Add(ctx, 1, attrs)
	m.deliveryLatency.Record(ctx, latency.Seconds(), attrs)
}

// RecordRequest records the final outcome of one operator request.
func (m *MetricsCollector) RecordRequest(ctx context.Context, outcome string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRemoteCall records a remote API call. class is "ok", "transient" or
// "permanent".
func (m *MetricsCollector) RecordRemoteCall(ctx context.Context, operation, class string, latency time.Duration) {
	if m == nil || m.remoteCalls == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("class", class),
	)
	m.remoteCalls.Add(ctx, 1, attrs)
	m.remoteLatency.Record(ctx, latency.Seconds(), metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordHTTPServerRequest records one served HTTP request.
func (m *MetricsCollector) RecordHTTPServerRequest(ctx context.Context, method, route string, status int, latency time.Duration, bytes int64) {
	if m == nil || m.httpRequests == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	m.httpRequests.Add(ctx, 1, attrs)
	m.httpLatency.Record(ctx, latency.Seconds(), attrs)
	if bytes > 0 {
		m.httpBytes.Add(ctx, bytes, metric.WithAttributes(attribute.String("http.route", route)))
	}
}
