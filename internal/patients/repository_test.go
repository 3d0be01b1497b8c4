package patients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func patientRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "clinic_id", "name", "email", "phone", "avatar_url",
		"session_value", "appointment_days", "appointment_time", "appointment_times", "is_active", "created_at"})
}

func TestRepositoryListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM patients WHERE user_id = \$1 AND is_active = \$2`).
		WithArgs("user-1", true).
		WillReturnRows(patientRows().
			AddRow(int64(1), "user-1", (*int64)(nil), "Maria", "m@x.dev", "", "",
				120.0, []int{1, 3}, "09:00", map[string]string{"3": "10:30"}, true, created))

	repo := NewRepositoryWithDB(mock)
	rows, err := repo.ListByUser(context.Background(), "user-1", true)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	p := rows[0]
	if !p.RecursOn(3) || p.TimeFor(3) != "10:30" || p.TimeFor(1) != "09:00" {
		t.Errorf("recurrence fields scanned wrong: %+v", p)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryDeactivateProcedure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT deactivate_patient\(\$1, \$2\)`).
		WithArgs("user-1", int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"deactivate_patient"}).AddRow(true))

	repo := NewRepositoryWithDB(mock)
	if err := repo.Deactivate(context.Background(), "user-1", 7); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryActivateUnknownPatient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT activate_patient\(\$1, \$2\)`).
		WithArgs("user-1", int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"activate_patient"}).AddRow(false))

	repo := NewRepositoryWithDB(mock)
	if err := repo.Activate(context.Background(), "user-1", 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRepositoryCountActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM patients WHERE user_id = \$1 AND is_active = true`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	repo := NewRepositoryWithDB(mock)
	count, err := repo.CountActive(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CountActive failed: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}
