package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmborges/clinicagenda/internal/accounts"
	"github.com/dmborges/clinicagenda/internal/schedule"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// AgendaSource builds the weekly agenda a reminder summarizes.
type AgendaSource interface {
	Week(ctx context.Context, userID string, anchor time.Time) (*schedule.WeekView, error)
}

// ProfileSource resolves the practitioner's email address.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (*accounts.Profile, error)
}

// ReminderService emails practitioners a summary of the next day's slots,
// confirmed and recurring alike. Nothing is sent for an empty day.
type ReminderService struct {
	sender   EmailSender
	agendas  AgendaSource
	profiles ProfileSource
	logger   *logging.Logger
	now      func() time.Time
}

// NewReminderService creates a reminder service.
func NewReminderService(sender EmailSender, agendas AgendaSource, profiles ProfileSource, logger *logging.Logger) *ReminderService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReminderService{
		sender:   sender,
		agendas:  agendas,
		profiles: profiles,
		logger:   logger.Background("reminders"),
		now:      time.Now,
	}
}

// SendDailySummary emails the account's slots for tomorrow. Returns the
// number of slots summarized; zero means no email was sent.
func (s *ReminderService) SendDailySummary(ctx context.Context, userID string) (int, error) {
	tomorrow := schedule.NoonNormalize(s.now()).AddDate(0, 0, 1)

	view, err := s.agendas.Week(ctx, userID, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("notify: build agenda for reminder: %w", err)
	}

	key := schedule.DateKey(tomorrow)
	var day *schedule.Day
	for i := range view.Days {
		if view.Days[i].Date == key {
			day = &view.Days[i]
			break
		}
	}
	if day == nil || len(day.Groups) == 0 {
		return 0, nil
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("notify: load profile for reminder: %w", err)
	}
	if profile.Email == "" {
		s.logger.Warn("skipping reminder, profile has no email", "user_id", userID)
		return 0, nil
	}

	var b strings.Builder
	total := 0
	fmt.Fprintf(&b, "Schedule for %s:\n\n", key)
	for _, group := range day.Groups {
		for _, slot := range group.Slots {
			label := slot.PatientName
			if slot.Source == schedule.SourceRecurring {
				label += " (recurring)"
			}
			fmt.Fprintf(&b, "  %s  %s\n", slot.Time, label)
			total++
		}
	}

	msg := EmailMessage{
		To:      profile.Email,
		ToName:  profile.Name,
		Subject: fmt.Sprintf("Your schedule for %s: %d appointment(s)", key, total),
		Body:    b.String(),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send daily summary", "error", err, "user_id", userID)
		return 0, err
	}
	s.logger.Info("sent daily summary", "user_id", userID, "date", key, "slots", total)
	return total, nil
}
