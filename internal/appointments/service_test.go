package appointments

import (
	"context"
	"errors"
	"testing"

	"github.com/dmborges/clinicagenda/pkg/logging"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	rows   []Appointment
	nextID int64
}

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]Appointment, error) {
	var out []Appointment
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByDate(_ context.Context, userID, date string) ([]Appointment, error) {
	var out []Appointment
	for _, r := range f.rows {
		if r.UserID == userID && r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Insert(_ context.Context, a Appointment) (*Appointment, error) {
	f.nextID++
	a.ID = f.nextID
	f.rows = append(f.rows, a)
	return &a, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, userID string, id int64, status Status) (*Appointment, error) {
	for i := range f.rows {
		if f.rows[i].UserID == userID && f.rows[i].ID == id {
			f.rows[i].Status = status
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) UpdateDetails(_ context.Context, userID string, id int64, date, t string, status Status, observation string) (*Appointment, error) {
	for i := range f.rows {
		if f.rows[i].UserID == userID && f.rows[i].ID == id {
			f.rows[i].Date = date
			f.rows[i].Time = t
			f.rows[i].Status = status
			f.rows[i].Observation = observation
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, userID string, id int64) error {
	for i := range f.rows {
		if f.rows[i].UserID == userID && f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func newTestService() (*Service, *fakeStore) {
	store := &fakeStore{}
	return NewService(store, nil, logging.Default()), store
}

func TestAddCreatesWithNoStatus(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 1, Date: "2024-01-10", Time: "09:00"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got.Status != StatusNone {
		t.Errorf("Status = %q, want %q", got.Status, StatusNone)
	}
	if got.ID == 0 {
		t.Error("stored row should carry an id")
	}
}

func TestAddRejectsSamePatientSameDay(t *testing.T) {
	svc, store := newTestService()
	if _, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 1, Date: "2024-01-10", Time: "09:00"}); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}

	_, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 1, Date: "2024-01-10", Time: "11:00"})
	if !errors.Is(err, ErrDuplicatePatientDay) {
		t.Fatalf("err = %v, want ErrDuplicatePatientDay", err)
	}
	if len(store.rows) != 1 {
		t.Errorf("collection length changed: %d rows", len(store.rows))
	}
}

func TestAddRejectsSameSlotAcrossPatients(t *testing.T) {
	svc, store := newTestService()
	if _, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 1, Date: "2024-01-10", Time: "09:00"}); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}

	_, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 2, Date: "2024-01-10", Time: "09:00"})
	if !errors.Is(err, ErrDuplicateTimeSlot) {
		t.Fatalf("err = %v, want ErrDuplicateTimeSlot", err)
	}
	if len(store.rows) != 1 {
		t.Errorf("collection length changed: %d rows", len(store.rows))
	}
}

func TestAddValidatesDateAndTime(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 1, Date: "10/01/2024", Time: "09:00"}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("bad date: err = %v, want ErrInvalidDate", err)
	}
	if _, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 1, Date: "2024-01-10", Time: "9:00"}); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("bad time: err = %v, want ErrInvalidTime", err)
	}
}

func TestUpdateStatusOpenTransitions(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 1, Date: "2024-01-10", Time: "09:00"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Completed -> Canceled -> NoShow is all legal; there is no terminal state.
	for _, status := range []string{"completed", "canceled", "no_show", "no_status"} {
		got, err := svc.UpdateStatus(context.Background(), "user-1", created.ID, status)
		if err != nil {
			t.Fatalf("UpdateStatus(%s) failed: %v", status, err)
		}
		if string(got.Status) != status {
			t.Errorf("Status = %q, want %q", got.Status, status)
		}
	}

	if _, err := svc.UpdateStatus(context.Background(), "user-1", created.ID, "done"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestUpdateDetailsReValidatesUniqueness(t *testing.T) {
	svc, _ := newTestService()
	first, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 1, Date: "2024-01-10", Time: "09:00"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	second, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 2, Date: "2024-01-11", Time: "09:00"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Moving second onto first's slot must be rejected.
	_, err = svc.UpdateDetails(context.Background(), "user-1", second.ID, UpdateInput{
		Date: "2024-01-10", Time: "09:00", Status: "no_status",
	})
	if !errors.Is(err, ErrDuplicateTimeSlot) {
		t.Fatalf("err = %v, want ErrDuplicateTimeSlot", err)
	}

	// Editing a row in place (same slot) is fine: the row excludes itself.
	got, err := svc.UpdateDetails(context.Background(), "user-1", first.ID, UpdateInput{
		Date: "2024-01-10", Time: "09:00", Status: "completed", Observation: "paid cash",
	})
	if err != nil {
		t.Fatalf("in-place edit failed: %v", err)
	}
	if got.Status != StatusCompleted || got.Observation != "paid cash" {
		t.Errorf("unexpected row after edit: %+v", got)
	}
}

func TestUpdateDetailsUnknownID(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.UpdateDetails(context.Background(), "user-1", 99, UpdateInput{
		Date: "2024-01-10", Time: "09:00", Status: "no_status",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc, store := newTestService()
	created, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 1, Date: "2024-01-10", Time: "09:00"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := svc.Delete(context.Background(), "user-1", created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(store.rows) != 0 {
		t.Errorf("row not removed: %v", store.rows)
	}
	if err := svc.Delete(context.Background(), "user-1", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

// recordingCache captures the rows the service pushes after each write.
type recordingCache struct {
	inserted []Appointment
	replaced []Appointment
	removed  []int64
}

func (c *recordingCache) Insert(_ string, rows ...Appointment) {
	c.inserted = append(c.inserted, rows...)
}

func (c *recordingCache) Replace(_ string, row Appointment) {
	c.replaced = append(c.replaced, row)
}

func (c *recordingCache) Remove(_ string, id int64) {
	c.removed = append(c.removed, id)
}

func TestWritesFlowIntoCache(t *testing.T) {
	store := &fakeStore{}
	cache := &recordingCache{}
	svc := NewService(store, cache, logging.Default())

	created, err := svc.Add(context.Background(), "user-1", AddInput{PatientID: 1, Date: "2024-01-10", Time: "09:00"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(cache.inserted) != 1 || cache.inserted[0].ID != created.ID {
		t.Fatalf("cache inserted = %v, want the stored row", cache.inserted)
	}

	if _, err := svc.UpdateStatus(context.Background(), "user-1", created.ID, "completed"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if len(cache.replaced) != 1 || cache.replaced[0].Status != StatusCompleted {
		t.Fatalf("cache replaced = %v, want the completed row", cache.replaced)
	}

	if _, err := svc.UpdateDetails(context.Background(), "user-1", created.ID, UpdateInput{Date: "2024-01-11", Time: "10:00", Status: "completed"}); err != nil {
		t.Fatalf("UpdateDetails failed: %v", err)
	}
	if len(cache.replaced) != 2 || cache.replaced[1].Date != "2024-01-11" {
		t.Fatalf("cache replaced = %v, want the moved row", cache.replaced)
	}

	if err := svc.Delete(context.Background(), "user-1", created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(cache.removed) != 1 || cache.removed[0] != created.ID {
		t.Fatalf("cache removed = %v, want [%d]", cache.removed, created.ID)
	}
}

func TestFailedWritesLeaveCacheUntouched(t *testing.T) {
	store := &fakeStore{}
	cache := &recordingCache{}
	svc := NewService(store, cache, logging.Default())

	if _, err := svc.UpdateStatus(context.Background(), "user-1", 99, "completed"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), "user-1", 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(cache.inserted)+len(cache.replaced)+len(cache.removed) != 0 {
		t.Errorf("cache touched by failed writes: %+v", cache)
	}
}
