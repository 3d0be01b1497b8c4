package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func appointmentRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "patient_id", "date", "time", "status", "observation", "created_at"})
}

func TestRepositoryListByDate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	created := time.Date(2024, 1, 9, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, user_id, patient_id, date, time, status, observation, created_at\s+FROM appointments WHERE user_id = \$1 AND date = \$2`).
		WithArgs("user-1", "2024-01-10").
		WillReturnRows(appointmentRows().
			AddRow(int64(1), "user-1", int64(7), "2024-01-10", "09:00", Status("no_status"), "", created))

	repo := NewRepositoryWithDB(mock)
	rows, err := repo.ListByDate(context.Background(), "user-1", "2024-01-10")
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(rows) != 1 || rows[0].PatientID != 7 {
		t.Fatalf("unexpected rows: %v", rows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryListByDateRangeIncludesEndDate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	created := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM appointments WHERE user_id = \$1 AND date >= \$2 AND date <= \$3`).
		WithArgs("user-1", "2024-06-02", "2024-06-08").
		WillReturnRows(appointmentRows().
			AddRow(int64(7), "user-1", int64(1), "2024-06-08", "10:00", Status("completed"), "", created))

	repo := NewRepositoryWithDB(mock)
	rows, err := repo.ListByDateRange(context.Background(), "user-1", "2024-06-02", "2024-06-08")
	if err != nil {
		t.Fatalf("ListByDateRange failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Date != "2024-06-08" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryInsertReturnsStoredRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	created := time.Date(2024, 1, 9, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs("user-1", int64(7), "2024-01-10", "09:00", StatusNone, "").
		WillReturnRows(appointmentRows().
			AddRow(int64(42), "user-1", int64(7), "2024-01-10", "09:00", StatusNone, "", created))

	repo := NewRepositoryWithDB(mock)
	stored, err := repo.Insert(context.Background(), Appointment{
		UserID: "user-1", PatientID: 7, Date: "2024-01-10", Time: "09:00", Status: StatusNone,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if stored.ID != 42 {
		t.Errorf("ID = %d, want 42", stored.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryBatchInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	created := time.Date(2024, 1, 9, 18, 0, 0, 0, time.UTC)
	batch := mock.ExpectBatch()
	batch.ExpectQuery(`INSERT INTO appointments`).
		WithArgs("user-1", int64(1), "2024-01-10", "09:00", StatusNone, "").
		WillReturnRows(appointmentRows().
			AddRow(int64(10), "user-1", int64(1), "2024-01-10", "09:00", StatusNone, "", created))
	batch.ExpectQuery(`INSERT INTO appointments`).
		WithArgs("user-1", int64(2), "2024-01-10", "10:30", StatusNone, "").
		WillReturnRows(appointmentRows().
			AddRow(int64(11), "user-1", int64(2), "2024-01-10", "10:30", StatusNone, "", created))

	repo := NewRepositoryWithDB(mock)
	out, err := repo.BatchInsert(context.Background(), []Appointment{
		{UserID: "user-1", PatientID: 1, Date: "2024-01-10", Time: "09:00", Status: StatusNone},
		{UserID: "user-1", PatientID: 2, Date: "2024-01-10", Time: "10:30", Status: StatusNone},
	})
	if err != nil {
		t.Fatalf("BatchInsert failed: %v", err)
	}
	if len(out) != 2 || out[0].ID != 10 || out[1].ID != 11 {
		t.Fatalf("unexpected rows: %v", out)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryBatchInsertEmpty(t *testing.T) {
	repo := NewRepositoryWithDB(nil)
	out, err := repo.BatchInsert(context.Background(), nil)
	if err != nil || out != nil {
		t.Fatalf("empty batch should be a no-op, got %v, %v", out, err)
	}
}

func TestRepositoryDeleteViaProcedure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT delete_appointment\(\$1, \$2\)`).
		WithArgs("user-1", int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"delete_appointment"}).AddRow(true))

	repo := NewRepositoryWithDB(mock)
	if err := repo.Delete(context.Background(), "user-1", 5); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryDeleteMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT delete_appointment\(\$1, \$2\)`).
		WithArgs("user-1", int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"delete_appointment"}).AddRow(false))

	repo := NewRepositoryWithDB(mock)
	if err := repo.Delete(context.Background(), "user-1", 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
