package nadavr

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client's prometheus collectors. A nil *Metrics is
// valid and disables instrumentation, so the client never checks for it.
type Metrics struct {
	registry *prometheus.Registry

	Connected     prometheus.Gauge
	Reconnects    prometheus.Counter
	CommandsSent  prometheus.Counter
	FramesTotal   *prometheus.CounterVec
	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on a fresh
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nadavr",
			Name:      "connected",
			Help:      "Whether the control connection is established (0 or 1)",
		}),

		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nadavr",
			Name:      "reconnect_attempts_total",
			Help:      "Total number of reconnection attempts",
		}),

		CommandsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nadavr",
			Name:      "commands_sent_total",
			Help:      "Total number of fire-and-forget commands written",
		}),

		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nadavr",
			Name:      "frames_received_total",
			Help:      "Total inbound frames by classification",
		}, []string{"kind"}), // reply, event, dropped

		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nadavr",
			Name:      "queries_total",
			Help:      "Total queries by outcome",
		}, []string{"status"}), // ok, timeout, superseded, connection_lost, cancelled, write_error

		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nadavr",
			Name:      "query_duration_seconds",
			Help:      "Time from query write to reply or failure",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.Connected,
		m.Reconnects,
		m.CommandsSent,
		m.FramesTotal,
		m.QueriesTotal,
		m.QueryDuration,
	)
	return m
}

// Handler returns an http.Handler serving the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) setConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
}

func (m *Metrics) reconnectAttempt() {
	if m == nil {
		return
	}
	m.Reconnects.Inc()
}

func (m *Metrics) commandSent() {
	if m == nil {
		return
	}
	m.CommandsSent.Inc()
}

func (m *Metrics) frameReceived(kind string) {
	if m == nil {
		return
	}
	m.FramesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) queryDone(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		m.QueryDuration.Observe(d.Seconds())
	}
}
