package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "unicatalog"

// PrometheusExporter exports request and attribute cache metrics.
// Cache series are read from the collector at scrape time.
type PrometheusExporter struct {
	collector *Collector

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewPrometheusExporter registers the exporter's metrics with reg.
// A nil reg uses the default registry.
func NewPrometheusExporter(collector *Collector, reg prometheus.Registerer) *PrometheusExporter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	e := &PrometheusExporter{
		collector: collector,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of catalog requests",
			},
			[]string{"method"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of catalog requests in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"method"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "request_errors_total",
				Help:      "Total number of failed catalog requests",
			},
			[]string{"method"},
		),
	}

	cacheValue := func(name, help string, valueType prometheus.ValueType, read func(*CacheMetrics) float64) {
		opts := prometheus.Opts{
			Namespace: namespace,
			Subsystem: "attribute_cache",
			Name:      name,
			Help:      help,
		}
		fn := func() float64 { return read(collector.GetCacheMetrics()) }
		if valueType == prometheus.CounterValue {
			factory.NewCounterFunc(prometheus.CounterOpts(opts), fn)
		} else {
			factory.NewGaugeFunc(prometheus.GaugeOpts(opts), fn)
		}
	}
	cacheValue("hits_total", "Attribute lookups served from cache", prometheus.CounterValue,
		func(m *CacheMetrics) float64 { return float64(m.Hits) })
	cacheValue("misses_total", "Attribute lookups that missed the cache", prometheus.CounterValue,
		func(m *CacheMetrics) float64 { return float64(m.Misses) })
	cacheValue("evictions_total", "Attributes evicted due to the size limit", prometheus.CounterValue,
		func(m *CacheMetrics) float64 { return float64(m.Evictions) })
	cacheValue("expirations_total", "Attributes dropped after their TTL", prometheus.CounterValue,
		func(m *CacheMetrics) float64 { return float64(m.Expirations) })
	cacheValue("hit_rate", "Current hit rate (0.0 to 1.0)", prometheus.GaugeValue,
		func(m *CacheMetrics) float64 { return m.HitRate })
	cacheValue("keys", "Attributes currently cached", prometheus.GaugeValue,
		func(m *CacheMetrics) float64 { return float64(m.KeysCurrent) })
	cacheValue("memory_bytes", "Estimated size of the cache in bytes", prometheus.GaugeValue,
		func(m *CacheMetrics) float64 { return float64(m.MemoryBytes) })

	return e
}

// RecordRequest records a request in Prometheus.
func (e *PrometheusExporter) RecordRequest(method string) {
	e.requests.WithLabelValues(method).Inc()
}

// RecordDuration records a duration in Prometheus.
func (e *PrometheusExporter) RecordDuration(method string, durationSeconds float64) {
	e.duration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordError records an error in Prometheus.
func (e *PrometheusExporter) RecordError(method string) {
	e.errors.WithLabelValues(method).Inc()
}
