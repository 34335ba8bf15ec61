// Package metrics exports pipeline, cache and HTTP events as Prometheus
// metrics. A [Registry] implements the hook interfaces of
// pkg/observability and serves them on /metrics.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/auroramap/pkg/observability"
)

const namespace = "auroramap"

// Registry holds all metrics for the application.
type Registry struct {
	// Pipeline
	StageTotal     *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	Systems        prometheus.Gauge
	DiscardedLoads prometheus.Counter

	// Cache
	CacheRequests *prometheus.CounterVec
	CacheBytes    *prometheus.HistogramVec

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initPipelineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initPipelineMetrics() {
	r.StageTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_total",
			Help:      "Pipeline stage executions by outcome",
		},
		[]string{"stage", "status"},
	)
	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Pipeline stage latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	r.Systems = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "systems",
			Help:      "Number of systems in the last laid out map",
		},
	)
	r.DiscardedLoads = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_discarded_loads_total",
			Help:      "Loads dropped because a newer load superseded them",
		},
	)
}

func (r *Registry) initCacheMetrics() {
	r.CacheRequests = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups and writes by key type and result",
		},
		[]string{"key_type", "result"},
	)
	r.CacheBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_entry_size_bytes",
			Help:      "Size of written cache entries in bytes",
			Buckets:   []float64{1000, 10000, 100000, 1000000, 10000000},
		},
		[]string{"key_type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
}

// Prometheus returns the underlying Prometheus registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Install registers r as the pipeline, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

func (r *Registry) recordStage(stage string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.StageTotal.WithLabelValues(stage, status).Inc()
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (r *Registry) OnLoadStart(context.Context, string) {}

func (r *Registry) OnLoadComplete(_ context.Context, source string, systems int, d time.Duration, err error) {
	r.recordStage("load_"+source, d, err)
}

func (r *Registry) OnLayoutStart(context.Context, int) {}

func (r *Registry) OnLayoutComplete(_ context.Context, nodeCount int, d time.Duration, err error) {
	r.recordStage("layout", d, err)
	if err == nil {
		r.Systems.Set(float64(nodeCount))
	}
}

func (r *Registry) OnRenderStart(context.Context, []string) {}

func (r *Registry) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	r.recordStage("render", d, err)
}

func (r *Registry) OnDiscard(context.Context, uint64) {
	r.DiscardedLoads.Inc()
}

func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheRequests.WithLabelValues(keyType, "set").Inc()
	r.CacheBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (r *Registry) OnRequest(context.Context, string, string) {
	r.HTTPRequestsInFlight.Inc()
}

func (r *Registry) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)
