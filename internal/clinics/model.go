package clinics

import (
	"errors"
	"time"
)

// Clinic is a practice location owned by a practitioner. Patients hold a
// nullable reference to a clinic; deleting a clinic detaches its patients
// rather than removing them.
type Clinic struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrNameRequired  = errors.New("clinics: name is required")
	ErrDuplicateName = errors.New("clinics: a clinic with this name already exists")
	ErrNotFound      = errors.New("clinics: clinic not found")
)
