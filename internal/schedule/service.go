package schedule

import (
	"context"
	"time"

	"github.com/dmborges/clinicagenda/internal/observability/metrics"
	"github.com/dmborges/clinicagenda/internal/patients"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// WeekView is the aggregated weekly agenda returned to callers.
type WeekView struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  [7]Day `json:"days"`
}

// Service resolves weekly agendas and drives lazy materialization: viewing a
// week that contains today reconciles today first, so the agenda the user
// lands on already has its recurring rows persisted.
type Service struct {
	store      AppointmentStore
	patients   PatientSource
	reconciler *Reconciler
	metrics    *metrics.ScheduleMetrics
	logger     *logging.Logger
	now        func() time.Time
}

// NewService creates a schedule service.
func NewService(store AppointmentStore, patientSource PatientSource, reconciler *Reconciler, m *metrics.ScheduleMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:      store,
		patients:   patientSource,
		reconciler: reconciler,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// WeekStart snaps any date back to the Sunday that starts its week.
func WeekStart(date time.Time) time.Time {
	day := NoonNormalize(date)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// Week builds the agenda for the week containing anchor. When that week
// includes today, today is reconciled before the view is assembled; the
// aggregation itself never writes.
func (s *Service) Week(ctx context.Context, userID string, anchor time.Time) (*WeekView, error) {
	start := WeekStart(anchor)
	end := start.AddDate(0, 0, 6)

	today := NoonNormalize(s.now())
	if !today.Before(start) && !today.After(end) {
		s.reconciler.EnsureForDate(ctx, userID, today, "agenda")
	}

	began := time.Now()

	active, err := s.patients.ListByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	inactive, err := s.patients.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	all := append(append([]patients.Patient{}, active...), inactive...)

	rows, err := s.store.ListByDateRange(ctx, userID, DateKey(start), DateKey(end))
	if err != nil {
		return nil, err
	}

	view := &WeekView{
		Start: DateKey(start),
		End:   DateKey(end),
		Days:  BuildWeek(start, active, all, rows),
	}
	s.metrics.ObserveAgendaBuild(time.Since(began).Seconds())
	return view, nil
}

// Materialize reconciles a single date on explicit request and reports how
// many rows were created.
func (s *Service) Materialize(ctx context.Context, userID string, date time.Time) int {
	created := s.reconciler.EnsureForDate(ctx, userID, date, "manual")
	return len(created)
}
