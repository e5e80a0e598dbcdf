package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the collectors exposed on
// the metrics endpoint.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	cacheOperations *prometheus.CounterVec
	cacheWriteSize  prometheus.Histogram

	goroutines prometheus.GaugeFunc
}

// NewMetricsService builds a registry with the application collectors plus
// the standard process and Go runtime collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	s := &MetricsService{
		registry: registry,
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		cacheOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations by type and outcome.",
		}, []string{"operation", "outcome"}),
		cacheWriteSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_bytes",
			Help:    "Size of payloads written to the cache.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}),
		goroutines: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "app_goroutines",
			Help: "Number of running goroutines.",
		}, func() float64 { return float64(runtime.NumGoroutine()) }),
	}

	registry.MustRegister(
		s.httpRequestDuration,
		s.httpRequestsTotal,
		s.cacheOperations,
		s.cacheWriteSize,
		s.goroutines,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return s
}

// Handler exposes the registry over HTTP.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	s.httpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	s.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
}

// RecordCacheOperation counts a cache access with its outcome, e.g. get/hit.
func (s *MetricsService) RecordCacheOperation(operation, outcome string) {
	s.cacheOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveCacheWrite records the byte size of a cache write.
func (s *MetricsService) ObserveCacheWrite(size int) {
	s.cacheWriteSize.Observe(float64(size))
}
