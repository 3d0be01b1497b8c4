package appointments

import (
	"time"
)

// Status is the lifecycle state of an appointment. It is a closed value set
// with no transition rules: any status may move to any other at any time.
type Status string

const (
	StatusNone      Status = "no_status"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
	StatusCanceled  Status = "canceled"
)

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusNone, StatusCompleted, StatusNoShow, StatusCanceled:
		return Status(raw), true
	}
	return "", false
}

// Billable reports whether the appointment counts toward revenue.
// Only sessions that were actually held or charged as no-shows do.
func (s Status) Billable() bool {
	return s == StatusCompleted || s == StatusNoShow
}

// DateLayout is the canonical calendar-day key. All dates in the system are
// naive local wall-clock values; zero-padded ISO strings keep lexical order
// equal to chronological order.
const DateLayout = "2006-01-02"

// TimeLayout is the canonical slot time. Must stay zero-padded 24h so raw
// string comparison sorts chronologically.
const TimeLayout = "15:04"

// Appointment is a materialized occurrence for a patient on a single day.
type Appointment struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	PatientID   int64     `json:"patient_id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      Status    `json:"status"`
	Observation string    `json:"observation"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidDate reports whether d is a well-formed calendar day key.
func ValidDate(d string) bool {
	_, err := time.Parse(DateLayout, d)
	return err == nil
}

// ValidTime reports whether t is a well-formed zero-padded slot time.
// time.Parse tolerates "9:00", which would break lexical ordering, so the
// check is done by hand.
func ValidTime(t string) bool {
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
