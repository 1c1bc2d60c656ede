package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tournament_engine"

// Recorder is the set of domain metrics emitted by the services.
type Recorder interface {
	ScheduleGenerated(format string, fixtures int, elapsed time.Duration)
	TeamsGenerated(count int)
	StandingsComputed(format string)
}

// Metrics holds the Prometheus collectors. Register them with Register.
type Metrics struct {
	schedulesGenerated *prometheus.CounterVec
	fixturesCreated    prometheus.Counter
	teamsGenerated     prometheus.Counter
	standingsComputed  *prometheus.CounterVec
	generationLatency  *prometheus.HistogramVec

	httpLatency  *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		schedulesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "generated_total",
			Help:      "Schedules generated by tournament format",
		}, []string{"format"}),
		fixturesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "fixtures_created_total",
			Help:      "Fixtures written across all schedules",
		}),
		teamsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "teams",
			Name:      "generated_total",
			Help:      "Teams produced by the balanced grouper",
		}),
		standingsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "standings",
			Name:      "computed_total",
			Help:      "Standings tables computed by tournament format",
		}, []string{"format"}),
		generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "generation_seconds",
			Help:      "Time spent generating and persisting a schedule",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route",
		}, []string{"route", "method", "code"}),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.schedulesGenerated, m.fixturesCreated, m.teamsGenerated,
		m.standingsComputed, m.generationLatency, m.httpLatency, m.httpRequests,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ScheduleGenerated(format string, fixtures int, elapsed time.Duration) {
	m.schedulesGenerated.WithLabelValues(format).Inc()
	m.fixturesCreated.Add(float64(fixtures))
	m.generationLatency.WithLabelValues(format).Observe(elapsed.Seconds())
}

func (m *Metrics) TeamsGenerated(count int) {
	m.teamsGenerated.Add(float64(count))
}

func (m *Metrics) StandingsComputed(format string) {
	m.standingsComputed.WithLabelValues(format).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method, code string, elapsed time.Duration) {
	labels := prometheus.Labels{"route": route, "method": method, "code": code}
	m.httpLatency.With(labels).Observe(elapsed.Seconds())
	m.httpRequests.With(labels).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) ScheduleGenerated(string, int, time.Duration) {}
func (Nop) TeamsGenerated(int) {}
func (Nop) StandingsComputed(string) {}
