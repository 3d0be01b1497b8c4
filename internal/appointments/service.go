package appointments

import (
	"context"
	"strings"

	"github.com/dmborges/clinicagenda/pkg/logging"
)

// Store is the persistence surface the service needs.
type Store interface {
	ListByUser(ctx context.Context, userID string) ([]Appointment, error)
	ListByDate(ctx context.Context, userID, date string) ([]Appointment, error)
	Insert(ctx context.Context, a Appointment) (*Appointment, error)
	UpdateStatus(ctx context.Context, userID string, id int64, status Status) (*Appointment, error)
	UpdateDetails(ctx context.Context, userID string, id int64, date, t string, status Status, observation string) (*Appointment, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// Cache is the live session collection authoritative rows flow into after
// each successful write, so a signed-in practitioner sees their own
// mutations without a refresh. A nil cache skips the step.
type Cache interface {
	Insert(userID string, rows ...Appointment)
	Replace(userID string, row Appointment)
	Remove(userID string, id int64)
}

// Service applies the booking invariants in front of storage: one appointment
// per patient per day, and one appointment per (date, time) slot per account.
// Both are checked before any write and backstopped by unique indexes.
type Service struct {
	store  Store
	cache  Cache
	logger *logging.Logger
}

// NewService creates an appointment service.
func NewService(store Store, cache Cache, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, cache: cache, logger: logger}
}

// AddInput is an ad hoc appointment creation request.
type AddInput struct {
	PatientID   int64  `json:"patient_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Observation string `json:"observation"`
}

// List returns the practitioner's appointments sorted by (date, time).
func (s *Service) List(ctx context.Context, userID string) ([]Appointment, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	SortByDateTime(rows)
	return rows, nil
}

// Add creates an ad hoc appointment with status no_status. It rejects, with
// no mutation, when the patient already has a row that day or the exact
// (date, time) slot is taken by anyone.
func (s *Service) Add(ctx context.Context, userID string, input AddInput) (*Appointment, error) {
	input.Date = strings.TrimSpace(input.Date)
	input.Time = strings.TrimSpace(input.Time)
	if !ValidDate(input.Date) {
		return nil, ErrInvalidDate
	}
	if !ValidTime(input.Time) {
		return nil, ErrInvalidTime
	}

	sameDay, err := s.store.ListByDate(ctx, userID, input.Date)
	if err != nil {
		return nil, err
	}
	if err := checkUniqueness(sameDay, input.PatientID, input.Time, 0); err != nil {
		return nil, err
	}

	stored, err := s.store.Insert(ctx, Appointment{
		UserID:      userID,
		PatientID:   input.PatientID,
		Date:        input.Date,
		Time:        input.Time,
		Status:      StatusNone,
		Observation: input.Observation,
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Insert(userID, *stored)
	}
	s.logger.Info("appointment created", "user_id", userID, "patient_id", input.PatientID, "date", input.Date, "time", input.Time)
	return stored, nil
}

// UpdateStatus moves the appointment to any status in the closed set. There
// is no transition guard: completed may become canceled and back.
func (s *Service) UpdateStatus(ctx context.Context, userID string, id int64, raw string) (*Appointment, error) {
	status, ok := ParseStatus(raw)
	if !ok {
		return nil, ErrInvalidStatus
	}
	stored, err := s.store.UpdateStatus(ctx, userID, id, status)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Replace(userID, *stored)
	}
	return stored, nil
}

// UpdateInput carries an appointment detail edit.
type UpdateInput struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	Observation string `json:"observation"`
}

// UpdateDetails rewrites date, time, status, and observation. The uniqueness
// invariants are re-checked against the target date, excluding the row being
// edited, so moving an appointment obeys the same rules as creating one.
func (s *Service) UpdateDetails(ctx context.Context, userID string, id int64, input UpdateInput) (*Appointment, error) {
	input.Date = strings.TrimSpace(input.Date)
	input.Time = strings.TrimSpace(input.Time)
	if !ValidDate(input.Date) {
		return nil, ErrInvalidDate
	}
	if !ValidTime(input.Time) {
		return nil, ErrInvalidTime
	}
	status, ok := ParseStatus(input.Status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	sameDay, err := s.store.ListByDate(ctx, userID, input.Date)
	if err != nil {
		return nil, err
	}
	var patientID int64 = -1
	for _, row := range sameDay {
		if row.ID == id {
			patientID = row.PatientID
			break
		}
	}
	if patientID == -1 {
		// Row is moving onto this date from another day; resolve its patient
		// from the full set.
		all, err := s.store.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, row := range all {
			if row.ID == id {
				patientID = row.PatientID
				break
			}
		}
		if patientID == -1 {
			return nil, ErrNotFound
		}
	}
	if err := checkUniqueness(sameDay, patientID, input.Time, id); err != nil {
		return nil, err
	}

	stored, err := s.store.UpdateDetails(ctx, userID, id, input.Date, input.Time, status, input.Observation)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Replace(userID, *stored)
	}
	return stored, nil
}

// Delete removes the appointment permanently via the server-side procedure.
func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Remove(userID, id)
	}
	s.logger.Info("appointment deleted", "user_id", userID, "appointment_id", id)
	return nil
}

// checkUniqueness enforces the two per-account invariants against the rows
// already stored for the target day. excludeID skips the row being edited.
func checkUniqueness(sameDay []Appointment, patientID int64, t string, excludeID int64) error {
	for _, row := range sameDay {
		if excludeID != 0 && row.ID == excludeID {
			continue
		}
		if row.PatientID == patientID {
			return ErrDuplicatePatientDay
		}
		if row.Time == t {
			return ErrDuplicateTimeSlot
		}
	}
	return nil
}
