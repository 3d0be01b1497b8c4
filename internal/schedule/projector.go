package schedule

import (
	"time"

	"github.com/dmborges/clinicagenda/internal/appointments"
	"github.com/dmborges/clinicagenda/internal/patients"
)

// DefaultTime is the slot time used when a patient's recurrence declares
// neither a per-weekday override nor a fallback time.
const DefaultTime = "09:00"

// Slot is a projected occurrence of a patient's weekly recurrence on a
// concrete date. It is derived, never persisted; the reconciler turns slots
// into appointment rows.
type Slot struct {
	Time    string
	Weekday int
}

// ProjectDue resolves whether the patient's weekly recurrence lands on the
// given date, and if so at what time. Pure and side-effect free; safe for any
// past or future date. Time resolution priority: per-weekday override, then
// the patient fallback, then DefaultTime.
func ProjectDue(p *patients.Patient, date time.Time) (Slot, bool) {
	weekday := int(date.Weekday())
	if !p.RecursOn(weekday) {
		return Slot{}, false
	}
	t := p.TimeFor(weekday)
	if t == "" {
		t = DefaultTime
	}
	return Slot{Time: t, Weekday: weekday}, true
}

// NoonNormalize pins the time-of-day to 12:00 local before any weekday or
// date-key derivation. Midnight-adjacent instants can land on the wrong
// calendar day around DST transitions; noon never does.
func NoonNormalize(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, date.Location())
}

// DateKey renders the canonical ISO date key for a date.
func DateKey(date time.Time) string {
	return date.Format(appointments.DateLayout)
}
