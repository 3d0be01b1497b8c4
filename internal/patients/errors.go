package patients

import "errors"

var (
	ErrNameRequired = errors.New("patients: name is required")

	// ErrNoRecurrenceDays rejects saving a patient without at least one
	// weekly appointment day through the normal form path.
	ErrNoRecurrenceDays = errors.New("patients: at least one appointment day is required")

	ErrInvalidWeekday = errors.New("patients: appointment days must be 0 (Sunday) through 6 (Saturday)")
	ErrInvalidTime    = errors.New("patients: appointment times must be zero-padded 24h HH:MM")

	// ErrQuotaReached rejects activating more patients than the account's
	// plan allows.
	ErrQuotaReached = errors.New("patients: active patient limit reached for current plan")

	ErrNotFound = errors.New("patients: not found")
)
