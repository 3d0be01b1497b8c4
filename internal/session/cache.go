package session

import (
	"github.com/dmborges/clinicagenda/internal/appointments"
	"github.com/dmborges/clinicagenda/internal/patients"
)

// AppointmentCache feeds successful appointment writes into the live
// session collection, keeping GET /session current without a refresh.
// Accounts without a loaded session are a no-op; their next bootstrap reads
// the rows from storage anyway.
type AppointmentCache struct {
	manager *Manager
}

var _ appointments.Cache = (*AppointmentCache)(nil)

// NewAppointmentCache creates the appointment-side session cache.
func NewAppointmentCache(m *Manager) *AppointmentCache {
	return &AppointmentCache{manager: m}
}

// Insert splices authoritative rows into the session collection.
func (c *AppointmentCache) Insert(userID string, rows ...appointments.Appointment) {
	if s, ok := c.manager.Peek(userID); ok {
		s.Appointments.Insert(rows...)
	}
}

// Replace swaps the cached row for the storage layer's version.
func (c *AppointmentCache) Replace(userID string, row appointments.Appointment) {
	if s, ok := c.manager.Peek(userID); ok {
		s.Appointments.Replace(row)
	}
}

// Remove drops a deleted row from the session collection.
func (c *AppointmentCache) Remove(userID string, id int64) {
	if s, ok := c.manager.Peek(userID); ok {
		s.Appointments.Remove(id)
	}
}

// PatientCache is the roster counterpart of AppointmentCache.
type PatientCache struct {
	manager *Manager
}

var _ patients.Cache = (*PatientCache)(nil)

// NewPatientCache creates the patient-side session cache.
func NewPatientCache(m *Manager) *PatientCache {
	return &PatientCache{manager: m}
}

// Add inserts a newly registered patient into the active partition.
func (c *PatientCache) Add(userID string, p patients.Patient) {
	if s, ok := c.manager.Peek(userID); ok {
		s.Roster.Add(p)
	}
}

// Replace swaps the cached patient for the storage layer's version.
func (c *PatientCache) Replace(userID string, p patients.Patient) {
	if s, ok := c.manager.Peek(userID); ok {
		s.Roster.Replace(p)
	}
}

// MoveToInactive mirrors a confirmed deactivation in the roster.
func (c *PatientCache) MoveToInactive(userID string, id int64) {
	if s, ok := c.manager.Peek(userID); ok {
		s.Roster.MoveToInactive(id)
	}
}

// MoveToActive mirrors a confirmed reactivation in the roster.
func (c *PatientCache) MoveToActive(userID string, id int64) {
	if s, ok := c.manager.Peek(userID); ok {
		s.Roster.MoveToActive(id)
	}
}
