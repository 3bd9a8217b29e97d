// Package metrics exposes prometheus instruments for the dunning
// scheduler.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	RunResultOK    = "ok"
	RunResultError = "error"
)

// DunningMetrics captures dunning run health signals.
type DunningMetrics struct {
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	notifications *prometheus.CounterVec
	chargeErrors  *prometheus.CounterVec
}

var (
	dunningMetricsOnce sync.Once
	dunningMetrics     *DunningMetrics
)

// Dunning returns the singleton dunning metrics, registering them on
// the default registerer on first use.
func Dunning() *DunningMetrics {
	dunningMetricsOnce.Do(func() {
		dunningMetrics = newDunningMetrics(prometheus.DefaultRegisterer)
	})
	return dunningMetrics
}

// ResetDunningMetricsForTest clears the singleton so tests can install
// a fresh registry.
func ResetDunningMetricsForTest() {
	dunningMetricsOnce = sync.Once{}
	dunningMetrics = nil
}

func newDunningMetrics(reg prometheus.Registerer) *DunningMetrics {
	m := &DunningMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regua_dunning_runs_total",
			Help: "Dunning runs executed, by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regua_dunning_run_duration_seconds",
			Help:    "Duration of a dunning run for one organization.",
			Buckets: prometheus.DefBuckets,
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regua_dunning_notifications_created_total",
			Help: "Ledger entries created by dunning runs.",
		}, []string{"channel"}),
		chargeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regua_dunning_charge_errors_total",
			Help: "Per-charge failures isolated during dunning runs.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.runs, m.runDuration, m.notifications, m.chargeErrors)
	return m
}

func (m *DunningMetrics) IncRun(result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
}

func (m *DunningMetrics) ObserveRunDuration(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(result).Observe(d.Seconds())
}

func (m *DunningMetrics) IncNotificationsCreated(channel string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel).Inc()
}

func (m *DunningMetrics) IncChargeError(reason string) {
	if m == nil {
		return
	}
	m.chargeErrors.WithLabelValues(reason).Inc()
}
