// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Rate provider metrics
	RateResolutions *prometheus.CounterVec
	RateCacheHits   prometheus.Counter
	RateCacheErrors prometheus.Counter
	CurrentRate     prometheus.Gauge

	// Prediction metrics
	PredictionsTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gold_predictor"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		HTTPRequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		RateResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_resolutions_total",
			Help:      "Exchange rate resolutions by source (primary, secondary, static)",
		}, []string{"source"}),
		RateCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_cache_hits_total",
			Help:      "Exchange rate lookups served from cache",
		}),
		RateCacheErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_cache_errors_total",
			Help:      "Exchange rate cache read/write failures",
		}),
		CurrentRate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "usd_inr_rate",
			Help:      "Most recently resolved USD to INR rate",
		}),
		PredictionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome",
		}, []string{"outcome"}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRate records a freshly resolved (not cached) rate.
func (m *Metrics) ObserveRate(source string, rate float64) {
	if m == nil {
		return
	}
	m.RateResolutions.WithLabelValues(source).Inc()
	m.CurrentRate.Set(rate)
}

// ObserveRateCacheHit records a lookup served from cache.
func (m *Metrics) ObserveRateCacheHit() {
	if m == nil {
		return
	}
	m.RateCacheHits.Inc()
}

// ObserveRateCacheError records a cache backend failure.
func (m *Metrics) ObserveRateCacheError() {
	if m == nil {
		return
	}
	m.RateCacheErrors.Inc()
}

// ObservePrediction records a prediction outcome ("ok", "input", "model").
func (m *Metrics) ObservePrediction(outcome string) {
	if m == nil {
		return
	}
	m.PredictionsTotal.WithLabelValues(outcome).Inc()
}
