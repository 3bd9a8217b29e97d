package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherCounter(t *testing.T, reg *prometheus.Registry, name, labelValue string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetValue() == labelValue {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func gatherHistogramCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name || family.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		var total uint64
		for _, metric := range family.GetMetric() {
			total += metric.GetHistogram().GetSampleCount()
		}
		return total
	}
	return 0
}

func TestDunningMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newDunningMetrics(reg)

	m.IncRun(RunResultOK)
	m.IncRun(RunResultOK)
	m.IncRun(RunResultError)
	m.ObserveRunDuration(RunResultOK, 120*time.Millisecond)
	m.IncNotificationsCreated("EMAIL")
	m.IncChargeError("db")

	assert.Equal(t, 2.0, gatherCounter(t, reg, "regua_dunning_runs_total", RunResultOK))
	assert.Equal(t, 1.0, gatherCounter(t, reg, "regua_dunning_runs_total", RunResultError))
	assert.Equal(t, 1.0, gatherCounter(t, reg, "regua_dunning_notifications_created_total", "EMAIL"))
	assert.Equal(t, 1.0, gatherCounter(t, reg, "regua_dunning_charge_errors_total", "db"))
	assert.EqualValues(t, 1, gatherHistogramCount(t, reg, "regua_dunning_run_duration_seconds"))
}

func TestDunningMetrics_NilSafe(t *testing.T) {
	var m *DunningMetrics
	m.IncRun(RunResultOK)
	m.ObserveRunDuration(RunResultOK, time.Second)
	m.IncNotificationsCreated("SMS")
	m.IncChargeError("db")
}
