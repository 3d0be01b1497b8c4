package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmborges/clinicagenda/internal/accounts"
	"github.com/dmborges/clinicagenda/internal/appointments"
	"github.com/dmborges/clinicagenda/internal/clinics"
	"github.com/dmborges/clinicagenda/internal/patients"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// ErrLoadTimeout is returned when the bootstrap deadline elapses before all
// data has arrived. The session is handed back anyway with whatever loaded;
// the in-flight fetch keeps running and applies its results when it lands.
var ErrLoadTimeout = errors.New("session: load timed out")

// ErrRefreshFailed marks a failed refresh on a session that already has
// data. The last-known-good state stays in place.
var ErrRefreshFailed = errors.New("session: refresh failed, showing last known state")

// ProfileSource loads the account profile.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (*accounts.Profile, error)
}

// ClinicSource lists the account's clinics.
type ClinicSource interface {
	List(ctx context.Context, userID string) ([]clinics.Clinic, error)
}

// PatientSource lists patients by active flag.
type PatientSource interface {
	ListByUser(ctx context.Context, userID string, active bool) ([]patients.Patient, error)
}

// AppointmentSource lists the account's appointments.
type AppointmentSource interface {
	ListByUser(ctx context.Context, userID string) ([]appointments.Appointment, error)
}

// Loader bootstraps sessions: profile, clinics, patients, appointments,
// fetched sequentially and applied to the session as each lands. A deadline
// bounds how long callers wait, not how long the fetch runs.
type Loader struct {
	profiles ProfileSource
	clinics  ClinicSource
	patients PatientSource
	appts    AppointmentSource
	timeout  time.Duration
	logger   *logging.Logger
}

// NewLoader creates a session loader.
func NewLoader(profiles ProfileSource, clinicSource ClinicSource, patientSource PatientSource, appts AppointmentSource, timeout time.Duration, logger *logging.Logger) *Loader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{
		profiles: profiles,
		clinics:  clinicSource,
		patients: patientSource,
		appts:    appts,
		timeout:  timeout,
		logger:   logger.Background("session-loader"),
	}
}

// Load bootstraps a fresh session. When the deadline elapses first, the
// caller gets the partially filled session plus ErrLoadTimeout; the fetch
// continues in the background and still applies late results.
func (l *Loader) Load(ctx context.Context, userID string) (*Session, error) {
	s := newSession(userID)

	done := make(chan error, 1)
	go func() {
		// Detached from the caller's cancellation: a released loading
		// screen must not abort the fetch that is still filling the session.
		err := l.fetchInto(context.WithoutCancel(ctx), s)
		if err == nil {
			s.markLoaded()
		} else {
			l.logger.Error("session bootstrap failed", "user_id", userID, "error", err)
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			// Nothing loaded before: fatal for this screen, retry affordance.
			return nil, err
		}
		return s, nil
	case <-time.After(l.timeout):
		l.logger.Warn("session bootstrap released on deadline", "user_id", userID, "timeout", l.timeout)
		return s, ErrLoadTimeout
	}
}

// Refresh re-fetches into an existing session. On failure the session keeps
// its last-known-good state and the caller gets ErrRefreshFailed to surface
// as a transient warning.
func (l *Loader) Refresh(ctx context.Context, s *Session) error {
	if err := l.fetchInto(ctx, s); err != nil {
		l.logger.Warn("session refresh failed", "user_id", s.UserID, "error", err)
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	s.markLoaded()
	return nil
}

// fetchInto loads each data set sequentially and applies it to the session
// as soon as it arrives, so a deadline release still keeps what landed.
func (l *Loader) fetchInto(ctx context.Context, s *Session) error {
	profile, err := l.profiles.Get(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("session: load profile: %w", err)
	}
	s.setProfile(profile)

	clinicList, err := l.clinics.List(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("session: load clinics: %w", err)
	}
	s.setClinics(clinicList)

	active, err := l.patients.ListByUser(ctx, s.UserID, true)
	if err != nil {
		return fmt.Errorf("session: load active patients: %w", err)
	}
	inactive, err := l.patients.ListByUser(ctx, s.UserID, false)
	if err != nil {
		return fmt.Errorf("session: load inactive patients: %w", err)
	}
	s.Roster.Reset(active, inactive)

	rows, err := l.appts.ListByUser(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("session: load appointments: %w", err)
	}
	s.Appointments.Reset(rows)
	return nil
}
