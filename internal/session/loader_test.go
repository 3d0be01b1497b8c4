package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmborges/clinicagenda/internal/accounts"
	"github.com/dmborges/clinicagenda/internal/appointments"
	"github.com/dmborges/clinicagenda/internal/clinics"
	"github.com/dmborges/clinicagenda/internal/patients"
)

type fakeSources struct {
	profile    *accounts.Profile
	profileErr error
	clinics    []clinics.Clinic
	active     []patients.Patient
	inactive   []patients.Patient
	appts      []appointments.Appointment
	apptsErr   error
	apptsDelay time.Duration
}

func (f *fakeSources) Get(_ context.Context, _ string) (*accounts.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeSources) List(_ context.Context, _ string) ([]clinics.Clinic, error) {
	return f.clinics, nil
}

func (f *fakeSources) ListByUser(_ context.Context, _ string, active bool) ([]patients.Patient, error) {
	if active {
		return f.active, nil
	}
	return f.inactive, nil
}

func (f *fakeSources) ListByUserAppointments(_ context.Context, _ string) ([]appointments.Appointment, error) {
	if f.apptsDelay > 0 {
		time.Sleep(f.apptsDelay)
	}
	if f.apptsErr != nil {
		return nil, f.apptsErr
	}
	return f.appts, nil
}

type apptSourceFunc func(ctx context.Context, userID string) ([]appointments.Appointment, error)

func (f apptSourceFunc) ListByUser(ctx context.Context, userID string) ([]appointments.Appointment, error) {
	return f(ctx, userID)
}

func newTestLoader(src *fakeSources, timeout time.Duration) *Loader {
	return NewLoader(src, src, src, apptSourceFunc(src.ListByUserAppointments), timeout, nil)
}

func baseSources() *fakeSources {
	return &fakeSources{
		profile: &accounts.Profile{UserID: "user-1", Name: "Marina", Plan: accounts.PlanFree},
		clinics: []clinics.Clinic{{ID: 1, UserID: "user-1", Name: "Centro"}},
		active:  []patients.Patient{{ID: 1, UserID: "user-1", Name: "Ana", IsActive: true}},
		appts:   []appointments.Appointment{{ID: 1, UserID: "user-1", PatientID: 1, Date: "2024-06-03", Time: "09:00"}},
	}
}

func TestLoadCompletes(t *testing.T) {
	loader := newTestLoader(baseSources(), time.Second)
	s, err := loader.Load(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !s.Loaded() {
		t.Error("session not marked loaded")
	}
	snap := s.Snapshot()
	if snap.Partial {
		t.Error("snapshot marked partial after full load")
	}
	if len(snap.Active) != 1 || len(snap.Appointments) != 1 || len(snap.Clinics) != 1 {
		t.Errorf("snapshot incomplete: %+v", snap)
	}
}

func TestLoadReleasesOnDeadlineAndAppliesLate(t *testing.T) {
	src := baseSources()
	src.apptsDelay = 150 * time.Millisecond
	loader := newTestLoader(src, 30*time.Millisecond)

	s, err := loader.Load(context.Background(), "user-1")
	if !errors.Is(err, ErrLoadTimeout) {
		t.Fatalf("err = %v, want ErrLoadTimeout", err)
	}
	// Released with what had landed so far.
	if s.Profile() == nil {
		t.Error("profile missing from partial session")
	}
	if s.Appointments.Len() != 0 {
		t.Errorf("appointments = %d before fetch resolves, want 0", s.Appointments.Len())
	}

	// The in-flight fetch keeps going and still applies its result.
	deadline := time.Now().Add(time.Second)
	for s.Appointments.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.Appointments.Len() != 1 {
		t.Fatal("late fetch result was not applied to the session")
	}
	if !s.Loaded() {
		t.Error("session not marked loaded after late completion")
	}
}

func TestLoadFailureIsFatal(t *testing.T) {
	src := baseSources()
	src.profileErr = errors.New("connection refused")
	loader := newTestLoader(src, time.Second)

	if _, err := loader.Load(context.Background(), "user-1"); err == nil || errors.Is(err, ErrLoadTimeout) {
		t.Fatalf("err = %v, want fatal load error", err)
	}
}

func TestRefreshFailureKeepsLastKnownGood(t *testing.T) {
	src := baseSources()
	loader := newTestLoader(src, time.Second)
	s, err := loader.Load(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	src.apptsErr = errors.New("connection reset")
	err = loader.Refresh(context.Background(), s)
	if !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("err = %v, want ErrRefreshFailed", err)
	}
	if s.Appointments.Len() != 1 {
		t.Errorf("appointments = %d after failed refresh, want last known 1", s.Appointments.Len())
	}
}

func TestManagerReusesSession(t *testing.T) {
	loader := newTestLoader(baseSources(), time.Second)
	m := NewManager(loader)

	first, err := m.GetOrLoad(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
	second, err := m.GetOrLoad(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
	if first != second {
		t.Error("manager created a second session for the same account")
	}

	m.End("user-1")
	third, err := m.GetOrLoad(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
	if third == first {
		t.Error("ended session was reused")
	}
}
