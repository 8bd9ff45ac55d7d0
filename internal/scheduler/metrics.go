package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the engine collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	checks        prometheus.Gauge
	probes        *prometheus.CounterVec
	probeLatency  prometheus.Histogram
	alerts        *prometheus.CounterVec
	errors        *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil reg builds unregistered
// collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "uptime_cycles_total", Help: "Completed check cycles",
		}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "uptime_cycle_duration_seconds",
			Help:    "Wall time of a full check cycle",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		checks: f.NewGauge(prometheus.GaugeOpts{
			Name: "uptime_checks_listed", Help: "Checks listed in the last cycle",
		}),
		probes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "uptime_probes_total", Help: "Probes by resulting state",
		}, []string{"state"}),
		probeLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "uptime_probe_latency_seconds",
			Help:    "Probe latency",
			Buckets: prometheus.DefBuckets,
		}),
		alerts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "uptime_alerts_total", Help: "Alerts by delivery result",
		}, []string{"result"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "uptime_errors_total", Help: "Pipeline errors by stage",
		}, []string{"stage"}),
	}
}

func (m *Metrics) cycleDone(listed int, seconds float64) {
	if m == nil {
		return
	}
	m.cycles.Inc()
	m.checks.Set(float64(listed))
	m.cycleDuration.Observe(seconds)
}

func (m *Metrics) probed(state string, seconds float64) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(state).Inc()
	m.probeLatency.Observe(seconds)
}

func (m *Metrics) alert(result string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(result).Inc()
}

func (m *Metrics) failed(stage string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(stage).Inc()
}
