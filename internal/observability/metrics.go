package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	requestsTotal        *prometheus.CounterVec
	requestLatency       *prometheus.HistogramVec
	loginsTotal          *prometheus.CounterVec
	tokensIssuedTotal    *prometheus.CounterVec
	violationsTotal      prometheus.Counter
	bansTotal            prometheus.Counter
	realtimeConnections  prometheus.Gauge
	eventsPublishedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the exam engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exam_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_logins_total",
			Help: "Student login attempts by outcome.",
		}, []string{"outcome"})

		tokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_tokens_issued_total",
			Help: "Admission tokens issued by scope.",
		}, []string{"scope"})

		violationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exam_violations_total",
			Help: "Total reported integrity violations.",
		})

		bansTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exam_bans_total",
			Help: "Total bans applied by the integrity pipeline.",
		})

		realtimeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "exam_realtime_connections",
			Help: "Currently connected realtime clients.",
		})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_events_published_total",
			Help: "Realtime events published by event name.",
		}, []string{"event"})

		prometheus.MustRegister(
			requestsTotal,
			requestLatency,
			loginsTotal,
			tokensIssuedTotal,
			violationsTotal,
			bansTotal,
			realtimeConnections,
			eventsPublishedTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the latency histogram for API requests.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatency
}

// LoginsTotal exposes the login attempt counter.
func LoginsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return loginsTotal
}

// TokensIssuedTotal exposes the token issuance counter.
func TokensIssuedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return tokensIssuedTotal
}

// ViolationsTotal exposes the violation counter.
func ViolationsTotal() prometheus.Counter {
	RegisterMetrics()
	return violationsTotal
}

// BansTotal exposes the ban counter.
func BansTotal() prometheus.Counter {
	RegisterMetrics()
	return bansTotal
}

// RealtimeConnections exposes the live connection gauge.
func RealtimeConnections() prometheus.Gauge {
	RegisterMetrics()
	return realtimeConnections
}

// EventsPublishedTotal exposes the realtime event counter.
func EventsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}
