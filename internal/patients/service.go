package patients

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmborges/clinicagenda/pkg/logging"
)

// Store is the persistence surface the service needs.
type Store interface {
	ListByUser(ctx context.Context, userID string, active bool) ([]Patient, error)
	Get(ctx context.Context, userID string, id int64) (*Patient, error)
	Insert(ctx context.Context, p Patient) (*Patient, error)
	Update(ctx context.Context, p Patient) (*Patient, error)
	Deactivate(ctx context.Context, userID string, id int64) error
	Activate(ctx context.Context, userID string, id int64) error
	CountActive(ctx context.Context, userID string) (int, error)
}

// PlanSource resolves the active-patient limit for the practitioner's
// subscription plan. A limit of 0 means unlimited.
type PlanSource interface {
	PatientLimit(ctx context.Context, userID string) (int, error)
}

// Cache is the live session roster successful writes flow into: stored rows
// replace their cached version and partition moves follow the storage
// transaction. A nil cache skips the step.
type Cache interface {
	Add(userID string, p Patient)
	Replace(userID string, p Patient)
	MoveToInactive(userID string, id int64)
	MoveToActive(userID string, id int64)
}

// Service owns patient lifecycle: registration, edits, and the atomic
// active/deactivated partition moves.
type Service struct {
	store  Store
	plans  PlanSource
	cache  Cache
	logger *logging.Logger
}

// NewService creates a patient service.
func NewService(store Store, plans PlanSource, cache Cache, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, plans: plans, cache: cache, logger: logger}
}

// Input carries the patient form fields.
type Input struct {
	ClinicID         *int64            `json:"clinic_id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	SessionValue     float64           `json:"session_value"`
	AppointmentDays  []int             `json:"appointment_days"`
	AppointmentTime  string            `json:"appointment_time"`
	AppointmentTimes map[string]string `json:"appointment_times"`
}

func (in *Input) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ErrNameRequired
	}
	if len(in.AppointmentDays) == 0 {
		return ErrNoRecurrenceDays
	}
	for _, d := range in.AppointmentDays {
		if d < 0 || d > 6 {
			return ErrInvalidWeekday
		}
	}
	if in.AppointmentTime != "" && !validClock(in.AppointmentTime) {
		return ErrInvalidTime
	}
	for key, override := range in.AppointmentTimes {
		day, err := strconv.Atoi(key)
		if err != nil || day < 0 || day > 6 {
			return ErrInvalidWeekday
		}
		if !validClock(override) {
			return ErrInvalidTime
		}
	}
	return nil
}

// ListActive returns the active partition.
func (s *Service) ListActive(ctx context.Context, userID string) ([]Patient, error) {
	return s.store.ListByUser(ctx, userID, true)
}

// ListInactive returns the deactivated partition.
func (s *Service) ListInactive(ctx context.Context, userID string) ([]Patient, error) {
	return s.store.ListByUser(ctx, userID, false)
}

// Create registers a new active patient, enforcing the plan quota.
func (s *Service) Create(ctx context.Context, userID string, input Input) (*Patient, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := s.checkQuota(ctx, userID); err != nil {
		return nil, err
	}

	stored, err := s.store.Insert(ctx, Patient{
		UserID:           userID,
		ClinicID:         input.ClinicID,
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		SessionValue:     input.SessionValue,
		AppointmentDays:  input.AppointmentDays,
		AppointmentTime:  input.AppointmentTime,
		AppointmentTimes: input.AppointmentTimes,
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(userID, *stored)
	}
	s.logger.Info("patient created", "user_id", userID, "patient_id", stored.ID)
	return stored, nil
}

// Update rewrites the patient's form fields.
func (s *Service) Update(ctx context.Context, userID string, id int64, input Input) (*Patient, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	stored, err := s.store.Update(ctx, Patient{
		ID:               id,
		UserID:           userID,
		ClinicID:         input.ClinicID,
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		SessionValue:     input.SessionValue,
		AppointmentDays:  input.AppointmentDays,
		AppointmentTime:  input.AppointmentTime,
		AppointmentTimes: input.AppointmentTimes,
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Replace(userID, *stored)
	}
	return stored, nil
}

// Deactivate moves the patient out of the active partition. The move is a
// single server-side transaction; on failure nothing changes client side.
func (s *Service) Deactivate(ctx context.Context, userID string, id int64) error {
	if err := s.store.Deactivate(ctx, userID, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.MoveToInactive(userID, id)
	}
	s.logger.Info("patient deactivated", "user_id", userID, "patient_id", id)
	return nil
}

// Activate restores the patient into the active partition, re-checking the
// plan quota first.
func (s *Service) Activate(ctx context.Context, userID string, id int64) error {
	if err := s.checkQuota(ctx, userID); err != nil {
		return err
	}
	if err := s.store.Activate(ctx, userID, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.MoveToActive(userID, id)
	}
	s.logger.Info("patient activated", "user_id", userID, "patient_id", id)
	return nil
}

func (s *Service) checkQuota(ctx context.Context, userID string) error {
	if s.plans == nil {
		return nil
	}
	limit, err := s.plans.PatientLimit(ctx, userID)
	if err != nil {
		return err
	}
	if limit <= 0 {
		return nil
	}
	count, err := s.store.CountActive(ctx, userID)
	if err != nil {
		return err
	}
	if count >= limit {
		return ErrQuotaReached
	}
	return nil
}

func validClock(t string) bool {
	if len(t) != 5 || t[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if t[i] < '0' || t[i] > '9' {
			return false
		}
	}
	hour := int(t[0]-'0')*10 + int(t[1]-'0')
	minute := int(t[3]-'0')*10 + int(t[4]-'0')
	return hour < 24 && minute < 60
}
