package accounts

import (
	"context"
	"strings"

	"github.com/dmborges/clinicagenda/pkg/logging"
)

// Store is the persistence surface the service needs.
type Store interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, p Profile) (*Profile, error)
	GetPlan(ctx context.Context, userID string) (Plan, error)
}

// Publisher pushes profile-updated events to connected sessions.
type Publisher interface {
	PublishProfileUpdated(ctx context.Context, userID string, profile *Profile) error
}

// Service reads and updates the practitioner profile and answers plan-quota
// questions for the patients package.
type Service struct {
	store         Store
	publisher     Publisher
	freeTierLimit int
	logger        *logging.Logger
}

// NewService creates an accounts service. publisher may be nil when realtime
// push is disabled.
func NewService(store Store, publisher Publisher, freeTierLimit int, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, publisher: publisher, freeTierLimit: freeTierLimit, logger: logger}
}

// Get returns the practitioner's own profile.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.store.Get(ctx, userID)
}

// UpdateInput carries a profile edit.
type UpdateInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Plan      string `json:"plan"`
	AvatarURL string `json:"avatar_url"`
}

// Update rewrites the profile and publishes the authoritative row to the
// account's realtime channel. Publish failures are logged, not surfaced; the
// update itself already succeeded.
func (s *Service) Update(ctx context.Context, userID string, input UpdateInput) (*Profile, error) {
	plan := Plan(strings.ToLower(strings.TrimSpace(input.Plan)))
	if !plan.Valid() {
		return nil, ErrInvalidPlan
	}

	stored, err := s.store.Update(ctx, Profile{
		UserID:    userID,
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Plan:      plan,
		AvatarURL: input.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishProfileUpdated(ctx, userID, stored); err != nil {
			s.logger.Warn("failed to publish profile update", "error", err, "user_id", userID)
		}
	}
	return stored, nil
}

// PatientLimit reports the active-patient quota for the account: the free
// tier limit on the free plan, 0 (unlimited) on premium.
func (s *Service) PatientLimit(ctx context.Context, userID string) (int, error) {
	plan, err := s.store.GetPlan(ctx, userID)
	if err != nil {
		return 0, err
	}
	if plan == PlanPremium {
		return 0, nil
	}
	return s.freeTierLimit, nil
}
