// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wallet-pnl/internal/domain"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal     *prometheus.CounterVec
	AnalysisDuration  prometheus.Histogram
	TradesAnalyzed    prometheus.Counter
	TradesSkipped     *prometheus.CounterVec
	PositionsByStatus *prometheus.CounterVec

	// Ingestion metrics
	TradesIngested prometheus.Counter

	// Cache metrics
	CacheRequests *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	WSSubscribers       prometheus.Gauge

	// Health metrics
	LastSuccessfulRefresh prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered with reg.
// A nil reg registers nowhere, which keeps tests independent.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "wallet_pnl"
	}
	f := promauto.With(reg)

	return &Metrics{
		AnalysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of wallet analyses by status",
		}, []string{"status"}),
		AnalysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Wallet analysis duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		TradesAnalyzed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "trades_analyzed_total",
			Help:      "Total number of trades fed to the engine",
		}),
		TradesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "trades_skipped_total",
			Help:      "Total number of trades dropped before aggregation by reason",
		}, []string{"reason"}),
		PositionsByStatus: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "positions_total",
			Help:      "Total number of reconstructed positions by status",
		}, []string{"status"}),

		TradesIngested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "trades_stored_total",
			Help:      "Total number of new trades stored",
		}),

		CacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Summary cache lookups by result",
		}, []string{"result"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		WSSubscribers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "ws_subscribers",
			Help:      "Current number of websocket subscribers",
		}),

		LastSuccessfulRefresh: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_refresh_timestamp",
			Help:      "Unix timestamp of last successful scheduled refresh",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is registered with the default Prometheus registry.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordAnalysis records one analysis run and the positions it produced.
func (m *Metrics) RecordAnalysis(duration time.Duration, trades int, skipped map[string]int, positions []domain.Position) {
	m.AnalysesTotal.WithLabelValues("success").Inc()
	m.AnalysisDuration.Observe(duration.Seconds())
	m.TradesAnalyzed.Add(float64(trades))
	for reason, n := range skipped {
		m.TradesSkipped.WithLabelValues(reason).Add(float64(n))
	}
	for _, p := range positions {
		m.PositionsByStatus.WithLabelValues(string(p.Status)).Inc()
	}
}

// RecordAnalysisError records a failed analysis run.
func (m *Metrics) RecordAnalysisError() {
	m.AnalysesTotal.WithLabelValues("error").Inc()
}

// RecordTradesIngested adds newly stored trades.
func (m *Metrics) RecordTradesIngested(n int) {
	m.TradesIngested.Add(float64(n))
}

// RecordCache records a cache lookup result.
func (m *Metrics) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(route string, code int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(route, httpCode(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordRefresh marks a successful scheduled refresh.
func (m *Metrics) RecordRefresh(at time.Time) {
	m.LastSuccessfulRefresh.Set(float64(at.Unix()))
}

func httpCode(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
