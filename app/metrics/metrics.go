package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lysyi3m/calendar-comb/app/calendar"
)

const namespace = "calendar_comb"

// Outcomes recorded per run.
const (
	OutcomeSuccess    = "success"
	OutcomeFetchError = "fetch_error"
	OutcomeParseError = "parse_error"
)

// Metrics owns its registry so several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	eventsTotal     *prometheus.CounterVec
	deliveriesTotal *prometheus.CounterVec
	runDuration     prometheus.Histogram
	lastSuccessTS   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Digest runs by outcome",
	}, []string{"outcome"})
	m.eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Calendar records by pipeline stage",
	}, []string{"stage"})
	m.deliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Message deliveries by sink and status",
	}, []string{"sink", "status"})
	m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Time spent on a digest run",
		Buckets:   prometheus.DefBuckets,
	})
	m.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful digest run",
	})

	m.registry.MustRegister(
		m.runsTotal, m.eventsTotal, m.deliveriesTotal,
		m.runDuration, m.lastSuccessTS,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRun records the outcome of a single digest run.
func (m *Metrics) ObserveRun(outcome string, duration time.Duration, at time.Time) {
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		m.lastSuccessTS.Set(float64(at.Unix()))
	}
}

func (m *Metrics) ObserveDigest(stats calendar.Stats) {
	m.eventsTotal.WithLabelValues("raw").Add(float64(stats.Raw))
	m.eventsTotal.WithLabelValues("rejected").Add(float64(stats.Rejected))
	m.eventsTotal.WithLabelValues("out_of_window").Add(float64(stats.OutOfWindow))
	m.eventsTotal.WithLabelValues("below_threshold").Add(float64(stats.BelowThreshold))
	m.eventsTotal.WithLabelValues("duplicate").Add(float64(stats.Duplicates))
	m.eventsTotal.WithLabelValues("emitted").Add(float64(stats.Emitted))
}

func (m *Metrics) ObserveDelivery(sink string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.deliveriesTotal.WithLabelValues(sink, status).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
