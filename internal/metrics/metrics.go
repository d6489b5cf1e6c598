package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process-wide instrumentation: HTTP request counters and
// the analysis pipeline gauges. A private registry keeps the /metrics output
// limited to what this service owns.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	analysisTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	analysisInFlight prometheus.Gauge
	queueLag         prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docapi",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "code"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docapi",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	analysisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docapi",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total completed analysis runs by status.",
		},
		[]string{"status"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docapi",
			Subsystem: "analysis",
			Name:      "run_duration_seconds",
			Help:      "Analysis run duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	analysisInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docapi",
			Subsystem: "analysis",
			Name:      "in_flight",
			Help:      "Number of analyses currently running.",
		},
	)
	queueLag := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docapi",
			Subsystem: "analysis",
			Name:      "queue_lag_seconds",
			Help:      "Delay between analysis enqueue and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	registry.MustRegister(requestsTotal, requestDuration, analysisTotal, analysisDuration, analysisInFlight, queueLag)

	return &Metrics{
		registry:         registry,
		requestsTotal:    requestsTotal,
		requestDuration:  requestDuration,
		analysisTotal:    analysisTotal,
		analysisDuration: analysisDuration,
		analysisInFlight: analysisInFlight,
		queueLag:         queueLag,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, code int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) AnalysisStarted() {
	m.analysisInFlight.Inc()
}

func (m *Metrics) AnalysisFinished(duration time.Duration, err error) {
	m.analysisInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.analysisTotal.WithLabelValues(status).Inc()
	m.analysisDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *Metrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.Observe(lag.Seconds())
}
