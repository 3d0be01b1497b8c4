package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// ScheduleSnapshot is an operator-facing summary of recurrence resolution,
// read back from the prometheus registry rather than tracked twice.
type ScheduleSnapshot struct {
	Materialized      map[string]int64 `json:"materialized_by_trigger"`
	ReconcileFailures int64            `json:"reconcile_failures"`
	AgendaBuilds      int64            `json:"agenda_builds"`
}

// SnapshotHandler serves the ops snapshot as JSON.
type SnapshotHandler struct {
	gatherer prometheus.Gatherer
}

func NewSnapshotHandler(gatherer prometheus.Gatherer) *SnapshotHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &SnapshotHandler{gatherer: gatherer}
}

// GetSnapshot returns reconciliation totals.
// GET /ops/schedule
func (h *SnapshotHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := Snapshot(h.gatherer)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

// Snapshot aggregates the schedule metric families.
func Snapshot(gatherer prometheus.Gatherer) ScheduleSnapshot {
	snap := ScheduleSnapshot{Materialized: map[string]int64{}}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return snap
	}

	for _, mf := range mfs {
		switch mf.GetName() {
		case "clinicagenda_schedule_appointments_materialized_total":
			for _, metric := range mf.Metric {
				trigger := labelValue(metric, "trigger")
				snap.Materialized[trigger] += int64(metric.GetCounter().GetValue())
			}
		case "clinicagenda_schedule_reconcile_failures_total":
			for _, metric := range mf.Metric {
				snap.ReconcileFailures += int64(metric.GetCounter().GetValue())
			}
		case "clinicagenda_schedule_agenda_build_seconds":
			for _, metric := range mf.Metric {
				snap.AgendaBuilds += int64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return snap
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.Label {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
