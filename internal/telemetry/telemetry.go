// Package telemetry provides Prometheus metrics for moodquote.
package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the quote service.
type Metrics struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Cache metrics
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheEntries   prometheus.Gauge
	CacheEvictions prometheus.Counter

	// Provider metrics
	ProviderRequests *prometheus.CounterVec
	ProviderErrors   *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec

	// Fallback metrics
	FallbackServed *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics. A nil registry uses the
// default registerer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodquote_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "status"},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moodquote_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"handler"},
		),

		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "moodquote_requests_in_flight",
				Help: "Number of requests currently being processed",
			},
		),

		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "moodquote_cache_hits_total",
				Help: "Total quote cache hits",
			},
		),

		CacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "moodquote_cache_misses_total",
				Help: "Total quote cache misses",
			},
		),

		CacheEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "moodquote_cache_entries",
				Help: "Number of live quote cache entries",
			},
		),

		CacheEvictions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "moodquote_cache_evictions_total",
				Help: "Total entries removed by cache sweeps",
			},
		),

		ProviderRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodquote_provider_requests_total",
				Help: "Total generation requests per provider",
			},
			[]string{"provider"},
		),

		ProviderErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodquote_provider_errors_total",
				Help: "Total generation failures per provider",
			},
			[]string{"provider", "error_type"},
		),

		ProviderLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moodquote_provider_latency_seconds",
				Help:    "Generation provider latency in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"provider"},
		),

		FallbackServed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodquote_fallback_served_total",
				Help: "Total fallback quotes served by reason",
			},
			[]string{"reason"},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveProviderCall records one provider round trip.
func (m *Metrics) ObserveProviderCall(provider string, start time.Time, err error) {
	m.ProviderRequests.WithLabelValues(provider).Inc()
	m.ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		m.ProviderErrors.WithLabelValues(provider, classifyError(err)).Inc()
	}
}

// classifyError buckets provider failures for the error_type label.
func classifyError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return "rate_limit"
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "api key"):
		return "auth"
	default:
		return "other"
	}
}
