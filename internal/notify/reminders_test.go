package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmborges/clinicagenda/internal/accounts"
	"github.com/dmborges/clinicagenda/internal/schedule"
)

type capturingSender struct {
	sent []EmailMessage
}

func (c *capturingSender) Send(_ context.Context, msg EmailMessage) error {
	c.sent = append(c.sent, msg)
	return nil
}

type fakeAgendaSource struct {
	view *schedule.WeekView
}

func (f *fakeAgendaSource) Week(_ context.Context, _ string, _ time.Time) (*schedule.WeekView, error) {
	return f.view, nil
}

type fakeProfileSource struct {
	profile *accounts.Profile
}

func (f *fakeProfileSource) Get(_ context.Context, _ string) (*accounts.Profile, error) {
	return f.profile, nil
}

func weekWithDay(date string, groups []schedule.TimeGroup) *schedule.WeekView {
	view := &schedule.WeekView{}
	view.Days[0] = schedule.Day{Date: date, Groups: groups}
	for i := 1; i < 7; i++ {
		view.Days[i] = schedule.Day{Date: "1970-01-0" + string(rune('1'+i))}
	}
	return view
}

func TestSendDailySummary(t *testing.T) {
	tomorrow := schedule.DateKey(schedule.NoonNormalize(time.Now()).AddDate(0, 0, 1))
	view := weekWithDay(tomorrow, []schedule.TimeGroup{
		{Time: "09:00", Slots: []schedule.AgendaSlot{
			{Time: "09:00", PatientName: "Ana", Source: schedule.SourceConfirmed},
		}},
		{Time: "10:30", Slots: []schedule.AgendaSlot{
			{Time: "10:30", PatientName: "Bia", Source: schedule.SourceRecurring},
		}},
	})

	sender := &capturingSender{}
	svc := NewReminderService(sender,
		&fakeAgendaSource{view: view},
		&fakeProfileSource{profile: &accounts.Profile{UserID: "user-1", Name: "Marina", Email: "marina@example.com"}},
		nil)

	total, err := svc.SendDailySummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("SendDailySummary failed: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "marina@example.com" {
		t.Errorf("to = %s", msg.To)
	}
	if !strings.Contains(msg.Body, "Ana") || !strings.Contains(msg.Body, "Bia (recurring)") {
		t.Errorf("body missing slots:\n%s", msg.Body)
	}
}

func TestSendDailySummaryEmptyDaySkips(t *testing.T) {
	tomorrow := schedule.DateKey(schedule.NoonNormalize(time.Now()).AddDate(0, 0, 1))
	sender := &capturingSender{}
	svc := NewReminderService(sender,
		&fakeAgendaSource{view: weekWithDay(tomorrow, nil)},
		&fakeProfileSource{profile: &accounts.Profile{Email: "marina@example.com"}},
		nil)

	total, err := svc.SendDailySummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("SendDailySummary failed: %v", err)
	}
	if total != 0 || len(sender.sent) != 0 {
		t.Errorf("empty day sent %d emails", len(sender.sent))
	}
}

func TestSendDailySummaryNoEmailSkips(t *testing.T) {
	tomorrow := schedule.DateKey(schedule.NoonNormalize(time.Now()).AddDate(0, 0, 1))
	view := weekWithDay(tomorrow, []schedule.TimeGroup{
		{Time: "09:00", Slots: []schedule.AgendaSlot{{Time: "09:00", PatientName: "Ana"}}},
	})
	sender := &capturingSender{}
	svc := NewReminderService(sender,
		&fakeAgendaSource{view: view},
		&fakeProfileSource{profile: &accounts.Profile{UserID: "user-1"}},
		nil)

	total, err := svc.SendDailySummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("SendDailySummary failed: %v", err)
	}
	if total != 0 || len(sender.sent) != 0 {
		t.Errorf("profile without email sent %d emails", len(sender.sent))
	}
}
