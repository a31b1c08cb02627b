// Package metrics provides Prometheus metrics for ology.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ology/internal/trend"
)

const metricsNamespace = "ology"

// Metrics owns a private registry so tests and multiple servers do not collide.
type Metrics struct {
	registry *prometheus.Registry

	APIRequests     *prometheus.CounterVec
	APIDuration     *prometheus.HistogramVec
	Analyses        *prometheus.CounterVec
	CrawlJobs       *prometheus.CounterVec
	LastCrawlPoints prometheus.Gauge
}

func New() *Metrics {
	var m Metrics
	m.registry = prometheus.NewRegistry()

	m.APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "The total number of analytics API requests.",
	}, []string{"path", "status_code"})
	m.registry.MustRegister(m.APIRequests)

	m.APIDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "The time taken by analytics API requests, retries included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path"})
	m.registry.MustRegister(m.APIDuration)

	m.Analyses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "trend",
		Name:      "analyses_total",
		Help:      "The total number of trend analyses by outcome.",
	}, []string{"outcome"})
	m.registry.MustRegister(m.Analyses)

	m.CrawlJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "crawl",
		Name:      "jobs_total",
		Help:      "The total number of crawl jobs by status.",
	}, []string{"status"})
	m.registry.MustRegister(m.CrawlJobs)

	m.LastCrawlPoints = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "crawl",
		Name:      "last_run_points",
		Help:      "The number of points analyzed by the last crawl run.",
	})
	m.registry.MustRegister(m.LastCrawlPoints)

	return &m
}

// ObserveAPI records one finished API request. Status 0 means a transport error.
func (m *Metrics) ObserveAPI(path string, status int, elapsed time.Duration) {
	m.APIRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.APIDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// ObserveAnalysis records the outcome of one trend analysis.
func (m *Metrics) ObserveAnalysis(err error) {
	m.Analyses.WithLabelValues(Outcome(err)).Inc()
}

// Outcome maps an analysis error to a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, trend.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, trend.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, trend.ErrDegenerateFit):
		return "degenerate_fit"
	default:
		return "error"
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
