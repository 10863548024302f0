// monitor/monitor.go
package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlinePlayers    prometheus.Gauge
	ActiveRooms      prometheus.Gauge
	MessagesReceived *prometheus.CounterVec
	MessagesDropped  *prometheus.CounterVec
	MessageLatency   *prometheus.HistogramVec
	Games            *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of connected clients",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of registered rooms",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Inbound messages by event",
		}, []string{"event"}),
		MessagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "Outbound messages a connection could not take",
		}, []string{"event"}),
		MessageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Inbound message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}, []string{"event"}),
		Games: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_total",
			Help:      "Game lifecycle transitions by outcome",
		}, []string{"outcome"}),
	}
}

// Monitor owns a private registry so several instances can live in one process.
type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	m := &Monitor{
		metrics:   NewMetrics(namespace),
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}
	m.registry.MustRegister(
		m.metrics.OnlinePlayers,
		m.metrics.ActiveRooms,
		m.metrics.MessagesReceived,
		m.metrics.MessagesDropped,
		m.metrics.MessageLatency,
		m.metrics.Games,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the server started",
		}, func() float64 { return time.Since(m.startTime).Seconds() }),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

func (m *Monitor) SetActiveRooms(count int) {
	m.metrics.ActiveRooms.Set(float64(count))
}

func (m *Monitor) IncMessagesReceived(event string) {
	m.metrics.MessagesReceived.WithLabelValues(event).Inc()
}

func (m *Monitor) IncMessagesDropped(event string) {
	m.metrics.MessagesDropped.WithLabelValues(event).Inc()
}

func (m *Monitor) ObserveMessageLatency(event string, duration time.Duration) {
	m.metrics.MessageLatency.WithLabelValues(event).Observe(duration.Seconds())
}

// Game outcomes.
const (
	GameStarted      = "started"
	GameCiviliansWon = "civilians_won"
	GameImpostorWon  = "impostor_won"
	GameAborted      = "aborted"
)

func (m *Monitor) IncGames(outcome string) {
	m.metrics.Games.WithLabelValues(outcome).Inc()
}
