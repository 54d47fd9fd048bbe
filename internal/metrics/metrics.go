// Package metrics exposes binding.Metrics as Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"firebasebindings/internal/binding"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ binding.Metrics = (*Metrics)(nil)

// Metrics registers its collectors on a private registry so several
// instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	cacheRequests     *prometheus.CounterVec
	analyticsEvents   *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewMetrics creates the collectors under config.Namespace.
func NewMetrics(config binding.MetricsConfig) *Metrics {
	namespace := config.Namespace
	if namespace == "" {
		namespace = "fbgateway"
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of Firebase module operations",
		}, []string{"module", "operation", "result"}),
		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Firebase module operation duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"module", "operation"}),
		cacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Total number of cache lookups",
		}, []string{"scope", "result"}),
		analyticsEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_events_total",
			Help:      "Total number of analytics events logged",
		}, []string{"kind", "result"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Gateway request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncOperation(module, operation, result string) {
	m.operations.WithLabelValues(module, operation, result).Inc()
}

func (m *Metrics) ObserveOperationDuration(module, operation string, duration time.Duration) {
	m.operationDuration.WithLabelValues(module, operation).Observe(duration.Seconds())
}

func (m *Metrics) IncCacheHits(scope string) {
	m.cacheRequests.WithLabelValues(scope, "hit").Inc()
}

func (m *Metrics) IncCacheMisses(scope string) {
	m.cacheRequests.WithLabelValues(scope, "miss").Inc()
}

func (m *Metrics) IncAnalyticsEvents(kind, result string) {
	m.analyticsEvents.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
