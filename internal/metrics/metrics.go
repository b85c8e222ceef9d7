package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const namespace = "ranked"

type Metrics struct {
	registry *prometheus.Registry

	queueSize      prometheus.Gauge
	pairings       prometheus.Counter
	queueExpired   prometheus.Counter
	matches        *prometheus.CounterVec
	flagged        *prometheus.CounterVec
	decayed        prometheus.Counter
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "size",
			Help:      "Players currently waiting in the matchmaking queue.",
		}),
		pairings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "pairings_total",
			Help:      "Pairings formed by the matchmaking queue.",
		}),
		queueExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "expired_total",
			Help:      "Queue entries dropped by the expiry sweep.",
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matches",
			Name:      "recorded_total",
			Help:      "Match results recorded, by outcome, validity and whether ratings moved.",
		}, []string{"outcome", "valid", "rating_applied"}),
		flagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "anticheat",
			Name:      "flagged_results_total",
			Help:      "Submitted results rejected by the anti-cheat gate, by reason.",
		}, []string{"reason"}),
		decayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "decayed_players_total",
			Help:      "Player ratings lowered by the inactivity decay sweep.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Handled RPC requests by procedure and code.",
		}, []string{"procedure", "code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "RPC handling latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.queueSize,
		m.pairings,
		m.queueExpired,
		m.matches,
		m.flagged,
		m.decayed,
		m.requests,
		m.requestLatency,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) QueueSize(n int) {
	m.queueSize.Set(float64(n))
}

func (m *Metrics) PairingFormed() {
	m.pairings.Inc()
}

func (m *Metrics) EntriesExpired(n int) {
	m.queueExpired.Add(float64(n))
}

func (m *Metrics) MatchRecorded(outcome string, valid, ratingApplied bool) {
	m.matches.WithLabelValues(outcome, strconv.FormatBool(valid), strconv.FormatBool(ratingApplied)).Inc()
}

func (m *Metrics) ResultFlagged(reason string) {
	m.flagged.WithLabelValues(reason).Inc()
}

func (m *Metrics) PlayersDecayed(n int64) {
	m.decayed.Add(float64(n))
}

func (m *Metrics) RequestHandled(procedure, code string, took time.Duration) {
	m.requests.WithLabelValues(procedure, code).Inc()
	m.requestLatency.WithLabelValues(procedure).Observe(took.Seconds())
}

var Module = fx.Provide(New)
