// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hiveguard/internal/domain/models"
)

const namespace = "hiveguard"

// Metrics owns a private registry so tests and multiple servers never collide
// on the global one.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter *prometheus.CounterVec
	ResponseTime   *prometheus.HistogramVec

	CallsAnalyzed     *prometheus.CounterVec
	RiskScore         prometheus.Histogram
	PatternDetections *prometheus.CounterVec
	ScammerMatches    prometheus.Counter
	EventsPublished   *prometheus.CounterVec
	ErrorCounter      *prometheus.CounterVec
}

// New creates and registers every collector
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),

		ResponseTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_time_seconds",
			Help:      "HTTP response time in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),

		CallsAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_analyzed_total",
			Help:      "Analyzed call transcripts by risk level",
		}, []string{"risk_level"}),

		RiskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_risk_score",
			Help:      "Distribution of call risk scores",
			Buckets:   prometheus.LinearBuckets(0, 20, 6),
		}),

		PatternDetections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pattern_detections_total",
			Help:      "Scam pattern detections by pattern name",
		}, []string{"pattern"}),

		ScammerMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scammer_matches_total",
			Help:      "Analyses that matched a registered scammer",
		}),

		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "call_events_published_total",
			Help:      "Call events handed to the event bus",
		}, []string{"status"}),

		ErrorCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors by component and type",
		}, []string{"component", "type"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.ResponseTime,
		m.CallsAnalyzed,
		m.RiskScore,
		m.PatternDetections,
		m.ScammerMatches,
		m.EventsPublished,
		m.ErrorCounter,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.ResponseTime.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveAnalysis records one call analysis
func (m *Metrics) ObserveAnalysis(result models.AnalysisResult) {
	m.CallsAnalyzed.WithLabelValues(string(result.RiskLevel)).Inc()
	m.RiskScore.Observe(result.RiskScore)
	for _, name := range result.DetectedPatterns {
		m.PatternDetections.WithLabelValues(name).Inc()
	}
	if result.ScammerMatch != nil {
		m.ScammerMatches.Inc()
	}
}

// ObservePublish records the outcome of handing an event to the bus
func (m *Metrics) ObservePublish(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.EventsPublished.WithLabelValues(status).Inc()
}

// RecordError counts an error
func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorCounter.WithLabelValues(component, errorType).Inc()
}
