package session

import (
	"sync"

	"github.com/dmborges/clinicagenda/internal/accounts"
	"github.com/dmborges/clinicagenda/internal/appointments"
	"github.com/dmborges/clinicagenda/internal/clinics"
	"github.com/dmborges/clinicagenda/internal/patients"
)

// Session is the in-memory state one signed-in practitioner works against:
// their profile, clinics, patient roster, and appointment collection. The
// roster and collection are the single mutation points for their data; every
// write path replaces entries with the storage layer's authoritative row or
// leaves state untouched on failure.
type Session struct {
	UserID string

	mu      sync.RWMutex
	profile *accounts.Profile
	clinics []clinics.Clinic
	loaded  bool

	Roster       *patients.Roster
	Appointments *appointments.Collection
}

func newSession(userID string) *Session {
	return &Session{
		UserID:       userID,
		Roster:       patients.NewRoster(nil, nil),
		Appointments: appointments.NewCollection(nil),
	}
}

// Profile returns the last loaded profile, nil before the first fetch lands.
func (s *Session) Profile() *accounts.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Clinics returns a snapshot of the loaded clinics.
func (s *Session) Clinics() []clinics.Clinic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]clinics.Clinic, len(s.clinics))
	copy(out, s.clinics)
	return out
}

// Loaded reports whether a full bootstrap has completed at least once.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Session) setProfile(p *accounts.Profile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
}

func (s *Session) setClinics(list []clinics.Clinic) {
	s.mu.Lock()
	s.clinics = list
	s.mu.Unlock()
}

func (s *Session) markLoaded() {
	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
}

// Snapshot is the serializable view of a session.
type Snapshot struct {
	UserID       string                     `json:"user_id"`
	Profile      *accounts.Profile          `json:"profile"`
	Clinics      []clinics.Clinic           `json:"clinics"`
	Active       []patients.Patient         `json:"active_patients"`
	Inactive     []patients.Patient         `json:"inactive_patients"`
	Appointments []appointments.Appointment `json:"appointments"`
	Partial      bool                       `json:"partial"`
}

// Snapshot captures the current state. partial marks a snapshot taken
// before the bootstrap finished.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		UserID:       s.UserID,
		Profile:      s.Profile(),
		Clinics:      s.Clinics(),
		Active:       s.Roster.Active(),
		Inactive:     s.Roster.Inactive(),
		Appointments: s.Appointments.All(),
		Partial:      !s.Loaded(),
	}
}
