package schedule

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmborges/clinicagenda/internal/appointments"
	"github.com/dmborges/clinicagenda/internal/observability/metrics"
	"github.com/dmborges/clinicagenda/internal/patients"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

var scheduleTracer = otel.Tracer("clinicagenda/schedule")

// AppointmentStore is the slice of appointment persistence the reconciler
// and aggregator need.
type AppointmentStore interface {
	ListByDate(ctx context.Context, userID, date string) ([]appointments.Appointment, error)
	ListByDateRange(ctx context.Context, userID, start, end string) ([]appointments.Appointment, error)
	BatchInsert(ctx context.Context, list []appointments.Appointment) ([]appointments.Appointment, error)
}

// PatientSource lists patients scoped to an account.
type PatientSource interface {
	ListByUser(ctx context.Context, userID string, active bool) ([]patients.Patient, error)
}

// Reconciler materializes recurring appointments on demand: when a date is
// first viewed, every active patient due that day without a persisted row
// gets one inserted with status no_status. Failures are logged to a quiet
// background sink and never surfaced to the caller; the next view of the
// same date retries naturally.
type Reconciler struct {
	store    AppointmentStore
	patients PatientSource
	cache    appointments.Cache
	metrics  *metrics.ScheduleMetrics
	logger   *logging.Logger
}

// NewReconciler creates a reconciler. cache and metrics may be nil.
func NewReconciler(store AppointmentStore, patientSource PatientSource, cache appointments.Cache, m *metrics.ScheduleMetrics, logger *logging.Logger) *Reconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Reconciler{
		store:    store,
		patients: patientSource,
		cache:    cache,
		metrics:  m,
		logger:   logger.Background("reconciler"),
	}
}

// EnsureForDate reconciles one calendar date and returns the rows it
// created, empty when the date was already fully materialized. Calling it
// again for the same date and the same patient set creates nothing.
//
// The date is noon-normalized before the weekday and date key are derived,
// so an instant near midnight on a DST boundary still reconciles the
// calendar day it belongs to.
func (r *Reconciler) EnsureForDate(ctx context.Context, userID string, date time.Time, trigger string) []appointments.Appointment {
	ctx, span := scheduleTracer.Start(ctx, "schedule.ensure_for_date")
	defer span.End()

	day := NoonNormalize(date)
	key := DateKey(day)
	span.SetAttributes(
		attribute.String("date", key),
		attribute.String("trigger", trigger),
	)

	active, err := r.patients.ListByUser(ctx, userID, true)
	if err != nil {
		r.fail(err, userID, key, "list active patients")
		return nil
	}

	existing, err := r.store.ListByDate(ctx, userID, key)
	if err != nil {
		r.fail(err, userID, key, "list existing appointments")
		return nil
	}
	taken := make(map[int64]bool, len(existing))
	for _, row := range existing {
		taken[row.PatientID] = true
	}

	var missing []appointments.Appointment
	for i := range active {
		p := &active[i]
		if taken[p.ID] {
			continue
		}
		slot, due := ProjectDue(p, day)
		if !due {
			continue
		}
		missing = append(missing, appointments.Appointment{
			UserID:    userID,
			PatientID: p.ID,
			Date:      key,
			Time:      slot.Time,
			Status:    appointments.StatusNone,
		})
	}
	if len(missing) == 0 {
		return nil
	}

	created, err := r.store.BatchInsert(ctx, missing)
	if err != nil {
		r.fail(err, userID, key, "batch insert")
		return nil
	}

	if r.cache != nil {
		r.cache.Insert(userID, created...)
	}
	span.SetAttributes(attribute.Int("materialized", len(created)))
	r.metrics.ObserveMaterialized(trigger, len(created))
	r.logger.Info("materialized recurring appointments",
		"user_id", userID, "date", key, "count", len(created), "trigger", trigger)
	return created
}

func (r *Reconciler) fail(err error, userID, date, op string) {
	r.metrics.ObserveReconcileFailure()
	r.logger.Error("reconciliation failed", "user_id", userID, "date", date, "op", op, "error", err)
}
