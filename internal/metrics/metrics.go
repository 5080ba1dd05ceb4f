// Package metrics provides Prometheus metrics instrumentation for the tool.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector provides metrics recording interface.
// This allows components to record metrics without direct prometheus dependency.
type Collector interface {
	// Kubernetes API metrics
	RecordAPICall(ctx context.Context, verb, resource, status string, duration time.Duration)
	RecordAPIError(ctx context.Context, verb, errorType string)

	// Tenant operation metrics
	RecordTenantOperation(ctx context.Context, operation, status string, duration time.Duration)

	// Helm metrics
	RecordHelmOperation(ctx context.Context, operation, status string, duration time.Duration)
	RecordHelmError(ctx context.Context, operation, errorType string)
	RecordHelmChartInfo(ctx context.Context, chart, version, appVersion string)
}

// prometheusCollector implements Collector using Prometheus metrics.
type prometheusCollector struct {
	// Kubernetes API metrics
	apiDuration    *prometheus.HistogramVec
	apiCallsTotal  *prometheus.CounterVec
	apiErrorsTotal *prometheus.CounterVec

	// Tenant operation metrics
	tenantOpDuration *prometheus.HistogramVec
	tenantOpsTotal   *prometheus.CounterVec

	// Helm metrics
	helmDuration    *prometheus.HistogramVec
	helmOpsTotal    *prometheus.CounterVec
	helmErrorsTotal *prometheus.CounterVec
	helmChartInfo   *prometheus.GaugeVec
}

// NewCollector creates a new Prometheus metrics collector and registers metrics.
func NewCollector(reg prometheus.Registerer) Collector {
	c := &prometheusCollector{}
	c.initAPIMetrics()
	c.initTenantMetrics()
	c.initHelmMetrics()
	c.register(reg)

	return c
}

// RecordAPICall records a Kubernetes API call.
func (c *prometheusCollector) RecordAPICall(
	_ context.Context,
	verb, resource, status string,
	duration time.Duration,
) {
	c.apiDuration.WithLabelValues(verb, resource).Observe(duration.Seconds())
	c.apiCallsTotal.WithLabelValues(verb, resource, status).Inc()
}

// RecordAPIError records a Kubernetes API error.
func (c *prometheusCollector) RecordAPIError(_ context.Context, verb, errorType string) {
	c.apiErrorsTotal.WithLabelValues(verb, errorType).Inc()
}

// RecordTenantOperation records a tenant controller operation.
func (c *prometheusCollector) RecordTenantOperation(
	_ context.Context,
	operation, status string,
	duration time.Duration,
) {
	c.tenantOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
	c.tenantOpsTotal.WithLabelValues(operation, status).Inc()
}

// RecordHelmOperation records a Helm operation.
func (c *prometheusCollector) RecordHelmOperation(
	_ context.Context,
	operation, status string,
	duration time.Duration,
) {
	c.helmDuration.WithLabelValues(operation).Observe(duration.Seconds())
	c.helmOpsTotal.WithLabelValues(operation, status).Inc()
}

// RecordHelmError records a Helm error.
func (c *prometheusCollector) RecordHelmError(_ context.Context, operation, errorType string) {
	c.helmErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordHelmChartInfo records the installed Helm chart version info.
func (c *prometheusCollector) RecordHelmChartInfo(_ context.Context, chart, version, appVersion string) {
	c.helmChartInfo.WithLabelValues(chart, version, appVersion).Set(1)
}

func (c *prometheusCollector) initAPIMetrics() {
	c.apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fluxmt_kube_api_duration_seconds",
			Help:    "Duration of Kubernetes API calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"verb", "resource"},
	)
	c.apiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxmt_kube_api_calls_total",
			Help: "Total Kubernetes API calls",
		},
		[]string{"verb", "resource", "status"},
	)
	c.apiErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxmt_kube_api_errors_total",
			Help: "Total Kubernetes API errors by type",
		},
		[]string{"verb", "error_type"},
	)
}

func (c *prometheusCollector) initTenantMetrics() {
	c.tenantOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fluxmt_tenant_operation_duration_seconds",
			Help:    "Duration of tenant provisioning operations",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)
	c.tenantOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxmt_tenant_operations_total",
			Help: "Total tenant provisioning operations",
		},
		[]string{"operation", "status"},
	)
}

func (c *prometheusCollector) initHelmMetrics() {
	c.helmDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fluxmt_helm_operation_duration_seconds",
			Help:    "Duration of Helm operations",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)
	c.helmOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxmt_helm_operations_total",
			Help: "Total Helm operations",
		},
		[]string{"operation", "status"},
	)
	c.helmErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluxmt_helm_errors_total",
			Help: "Total Helm errors by type",
		},
		[]string{"operation", "error_type"},
	)
	c.helmChartInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fluxmt_helm_chart_info",
			Help: "Installed Helm chart version info (always 1)",
		},
		[]string{"chart", "version", "app_version"},
	)
}

func (c *prometheusCollector) register(reg prometheus.Registerer) {
	reg.MustRegister(
		c.apiDuration,
		c.apiCallsTotal,
		c.apiErrorsTotal,
		c.tenantOpDuration,
		c.tenantOpsTotal,
		c.helmDuration,
		c.helmOpsTotal,
		c.helmErrorsTotal,
		c.helmChartInfo,
	)
}

// NoopCollector is a no-op implementation of Collector for testing.
type NoopCollector struct{}

// NewNoopCollector creates a new no-op collector.
func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

// RecordAPICall is a no-op.
func (c *NoopCollector) RecordAPICall(_ context.Context, _, _, _ string, _ time.Duration) {}

// RecordAPIError is a no-op.
func (c *NoopCollector) RecordAPIError(_ context.Context, _, _ string) {}

// RecordTenantOperation is a no-op.
func (c *NoopCollector) RecordTenantOperation(_ context.Context, _, _ string, _ time.Duration) {}

// RecordHelmOperation is a no-op.
func (c *NoopCollector) RecordHelmOperation(_ context.Context, _, _ string, _ time.Duration) {}

// RecordHelmError is a no-op.
func (c *NoopCollector) RecordHelmError(_ context.Context, _, _ string) {}

// RecordHelmChartInfo is a no-op.
func (c *NoopCollector) RecordHelmChartInfo(_ context.Context, _, _, _ string) {}
