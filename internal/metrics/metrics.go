package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "tictactoe"

// Metrics owns its registry so several instances can live in one process (tests).
type Metrics struct {
	registry *prometheus.Registry

	OnlineConnections prometheus.Gauge
	ActiveRooms       prometheus.Gauge
	MessagesReceived  *prometheus.CounterVec
	MovesApplied      *prometheus.CounterVec
	Rejections        *prometheus.CounterVec
	MessageLatency    prometheus.Histogram
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OnlineConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_connections",
			Help:      "Number of open websocket connections",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of live rooms",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of client messages by action",
		}, []string{"action"}),
		MovesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_applied_total",
			Help:      "Total number of accepted moves by outcome",
		}, []string{"outcome"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Total number of rejected requests by error code",
		}, []string{"code"}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Client message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.OnlineConnections,
		m.ActiveRooms,
		m.MessagesReceived,
		m.MovesApplied,
		m.Rejections,
		m.MessageLatency,
	)

	return m
}

// Handler - Prometheus exposition of this instance's registry.
func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{Registry: that.registry})
}

func (that *Metrics) IncOnlineConnections() {
	that.OnlineConnections.Inc()
}

func (that *Metrics) DecOnlineConnections() {
	that.OnlineConnections.Dec()
}

func (that *Metrics) SetActiveRooms(count int) {
	that.ActiveRooms.Set(float64(count))
}

func (that *Metrics) IncMessagesReceived(action string) {
	that.MessagesReceived.WithLabelValues(action).Inc()
}

func (that *Metrics) IncMovesApplied(outcome string) {
	that.MovesApplied.WithLabelValues(outcome).Inc()
}

func (that *Metrics) IncRejections(code string) {
	that.Rejections.WithLabelValues(code).Inc()
}

func (that *Metrics) ObserveMessageLatency(duration time.Duration) {
	that.MessageLatency.Observe(duration.Seconds())
}
