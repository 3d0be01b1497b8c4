package patients

import (
	"strconv"
	"time"
)

// Patient is a person under the practitioner's care. The recurrence fields
// declare the weekly schedule the agenda projects concrete appointments from:
// AppointmentDays holds weekday integers (0=Sunday..6=Saturday),
// AppointmentTimes optionally overrides the slot time for a specific weekday
// (keyed by the weekday integer as a decimal string), and AppointmentTime is
// the fallback for weekdays without an override.
type Patient struct {
	ID               int64             `json:"id"`
	UserID           string            `json:"user_id"`
	ClinicID         *int64            `json:"clinic_id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	AvatarURL        string            `json:"avatar_url"`
	SessionValue     float64           `json:"session_value"`
	AppointmentDays  []int             `json:"appointment_days"`
	AppointmentTime  string            `json:"appointment_time"`
	AppointmentTimes map[string]string `json:"appointment_times,omitempty"`
	IsActive         bool              `json:"is_active"`
	CreatedAt        time.Time         `json:"created_at"`
}

// RecursOn reports whether the patient's weekly schedule includes the
// weekday. A nil or empty day set means never due; malformed records degrade
// to "not recurring" rather than erroring.
func (p *Patient) RecursOn(weekday int) bool {
	for _, d := range p.AppointmentDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// TimeFor resolves the effective slot time for a weekday: the per-weekday
// override wins, then the patient fallback, then the empty string (the
// projector substitutes its own default).
func (p *Patient) TimeFor(weekday int) string {
	if override, ok := p.AppointmentTimes[strconv.Itoa(weekday)]; ok && override != "" {
		return override
	}
	return p.AppointmentTime
}
