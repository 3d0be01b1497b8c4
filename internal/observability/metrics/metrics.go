package metrics

import "github.com/prometheus/client_golang/prometheus"

// ScheduleMetrics exposes counters/histograms for recurrence resolution.
type ScheduleMetrics struct {
	materializedTotal   *prometheus.CounterVec
	reconcileFailures   prometheus.Counter
	agendaBuildDuration prometheus.Histogram
}

func NewScheduleMetrics(reg prometheus.Registerer) *ScheduleMetrics {
	m := &ScheduleMetrics{
		materializedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicagenda",
			Subsystem: "schedule",
			Name:      "appointments_materialized_total",
			Help:      "Recurring appointments materialized into concrete rows",
		}, []string{"trigger"}),
		reconcileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicagenda",
			Subsystem: "schedule",
			Name:      "reconcile_failures_total",
			Help:      "Failed batch inserts during recurrence reconciliation",
		}),
		agendaBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinicagenda",
			Subsystem: "schedule",
			Name:      "agenda_build_seconds",
			Help:      "Latency of weekly agenda aggregation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.materializedTotal, m.reconcileFailures, m.agendaBuildDuration)
	return m
}

func (m *ScheduleMetrics) ObserveMaterialized(trigger string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.materializedTotal.WithLabelValues(trigger).Add(float64(count))
}

func (m *ScheduleMetrics) ObserveReconcileFailure() {
	if m == nil {
		return
	}
	m.reconcileFailures.Inc()
}

func (m *ScheduleMetrics) ObserveAgendaBuild(seconds float64) {
	if m == nil {
		return
	}
	m.agendaBuildDuration.Observe(seconds)
}
