package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmborges/clinicagenda/internal/accounts"
)

// Event is the payload pushed over an account's channel. Only the user's own
// profile record is covered; patients and appointments require a manual
// refresh to see another session's writes.
type Event struct {
	Type      string            `json:"type"`
	UserID    string            `json:"user_id"`
	Profile   *accounts.Profile `json:"profile,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

const EventProfileUpdated = "profile_updated"

func channelFor(userID string) string {
	return "profile:" + userID
}

// Publisher broadcasts profile events through redis pub/sub so every
// connected session of the account sees the change.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a redis-backed publisher.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishProfileUpdated pushes the authoritative profile row to the
// account's channel.
func (p *Publisher) PublishProfileUpdated(ctx context.Context, userID string, profile *accounts.Profile) error {
	payload, err := json.Marshal(Event{
		Type:      EventProfileUpdated,
		UserID:    userID,
		Profile:   profile,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("realtime: marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, channelFor(userID), payload).Err(); err != nil {
		return fmt.Errorf("realtime: publish: %w", err)
	}
	return nil
}
