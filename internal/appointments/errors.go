package appointments

import "errors"

var (
	// ErrDuplicatePatientDay rejects a second appointment for the same
	// patient on the same calendar day.
	ErrDuplicatePatientDay = errors.New("appointments: patient already has an appointment on this date")

	// ErrDuplicateTimeSlot rejects booking the exact same date and time
	// twice, regardless of patient or clinic.
	ErrDuplicateTimeSlot = errors.New("appointments: time slot already taken on this date")

	ErrInvalidStatus = errors.New("appointments: invalid status")
	ErrInvalidDate   = errors.New("appointments: invalid date, want YYYY-MM-DD")
	ErrInvalidTime   = errors.New("appointments: invalid time, want HH:MM")
	ErrNotFound      = errors.New("appointments: not found")
)
