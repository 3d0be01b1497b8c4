package accounts

import (
	"errors"
	"time"
)

// Plan gates the active-patient quota.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Valid reports whether the plan is one of the known tiers.
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPremium
}

// Profile is the practitioner's own account record. It is the only entity
// the realtime channel pushes updates for.
type Profile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Plan      Plan      `json:"plan"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrNotFound    = errors.New("accounts: profile not found")
	ErrInvalidPlan = errors.New("accounts: invalid plan")
)
