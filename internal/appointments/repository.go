package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, user_id, patient_id, date, time, status, observation, created_at`

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Repository provides persistence for appointment rows.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

// ListByUser returns every appointment owned by the practitioner, ordered by
// (date, time). Rows with malformed dates are pushed last by the caller's
// in-memory sort; the query itself orders lexically.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE user_id = $1
		ORDER BY date, time`, userID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	return scanAppointments(rows)
}

// ListByDate returns the practitioner's appointments for a single day.
func (r *Repository) ListByDate(ctx context.Context, userID, date string) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE user_id = $1 AND date = $2
		ORDER BY time`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by date: %w", err)
	}
	return scanAppointments(rows)
}

// ListByDateRange returns appointments with start <= date <= end,
// both bounds inclusive.
func (r *Repository) ListByDateRange(ctx context.Context, userID, start, end string) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, time`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by range: %w", err)
	}
	return scanAppointments(rows)
}

// Insert stores a single appointment and returns the authoritative row.
func (r *Repository) Insert(ctx context.Context, a Appointment) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (user_id, patient_id, date, time, status, observation)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+appointmentColumns,
		a.UserID, a.PatientID, a.Date, a.Time, a.Status, a.Observation)
	stored, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}
	return stored, nil
}

// BatchInsert stores the given rows in one round trip and returns the
// authoritative rows. Used by recurrence materialization; a failure anywhere
// in the batch aborts the whole operation.
func (r *Repository) BatchInsert(ctx context.Context, list []Appointment) ([]Appointment, error) {
	if len(list) == 0 {
		return nil, nil
	}
	batch := &pgx.Batch{}
	for _, a := range list {
		batch.Queue(`
			INSERT INTO appointments (user_id, patient_id, date, time, status, observation)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+appointmentColumns,
			a.UserID, a.PatientID, a.Date, a.Time, a.Status, a.Observation)
	}

	results := r.db.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	out := make([]Appointment, 0, len(list))
	for range list {
		stored, err := scanAppointment(results.QueryRow())
		if err != nil {
			return nil, fmt.Errorf("appointments: batch insert: %w", err)
		}
		out = append(out, *stored)
	}
	return out, nil
}

// UpdateStatus changes only the status and returns the stored row.
func (r *Repository) UpdateStatus(ctx context.Context, userID string, id int64, status Status) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments SET status = $3
		WHERE user_id = $1 AND id = $2
		RETURNING `+appointmentColumns, userID, id, status)
	stored, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: update status: %w", err)
	}
	return stored, nil
}

// UpdateDetails rewrites the editable fields and returns the stored row.
func (r *Repository) UpdateDetails(ctx context.Context, userID string, id int64, date, t string, status Status, observation string) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments SET date = $3, time = $4, status = $5, observation = $6
		WHERE user_id = $1 AND id = $2
		RETURNING `+appointmentColumns, userID, id, date, t, status, observation)
	stored, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: update details: %w", err)
	}
	return stored, nil
}

// Delete removes the row through the server-side delete_appointment
// procedure, which verifies ownership atomically. Deletion is a hard delete.
func (r *Repository) Delete(ctx context.Context, userID string, id int64) error {
	var deleted bool
	err := r.db.QueryRow(ctx, `SELECT delete_appointment($1, $2)`, userID, id).Scan(&deleted)
	if err != nil {
		return fmt.Errorf("appointments: delete: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(&a.ID, &a.UserID, &a.PatientID, &a.Date, &a.Time, &a.Status, &a.Observation, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()
	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.UserID, &a.PatientID, &a.Date, &a.Time, &a.Status, &a.Observation, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate: %w", err)
	}
	if out == nil {
		out = []Appointment{}
	}
	return out, nil
}
