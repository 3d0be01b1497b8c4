package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const patientColumns = `id, user_id, clinic_id, name, email, phone, avatar_url, session_value,
	       appointment_days, appointment_time, appointment_times, is_active, created_at`

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for patients.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

// ListByUser returns one partition of the practitioner's patients, sorted by
// name. Row-level scoping is always `user_id = ? AND is_active = ?`.
func (r *Repository) ListByUser(ctx context.Context, userID string, active bool) ([]Patient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients WHERE user_id = $1 AND is_active = $2
		ORDER BY lower(name)`, userID, active)
	if err != nil {
		return nil, fmt.Errorf("patients: list: %w", err)
	}
	return scanPatients(rows)
}

// Get returns a single patient scoped to the practitioner.
func (r *Repository) Get(ctx context.Context, userID string, id int64) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients WHERE user_id = $1 AND id = $2`, userID, id)
	p, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: get: %w", err)
	}
	return p, nil
}

// Insert stores a new active patient and returns the authoritative row.
func (r *Repository) Insert(ctx context.Context, p Patient) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO patients (user_id, clinic_id, name, email, phone, session_value,
		                      appointment_days, appointment_time, appointment_times)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+patientColumns,
		p.UserID, p.ClinicID, p.Name, p.Email, p.Phone, p.SessionValue,
		p.AppointmentDays, p.AppointmentTime, p.AppointmentTimes)
	stored, err := scanPatient(row)
	if err != nil {
		return nil, fmt.Errorf("patients: insert: %w", err)
	}
	return stored, nil
}

// Update rewrites the editable fields and returns the authoritative row.
func (r *Repository) Update(ctx context.Context, p Patient) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE patients SET clinic_id = $3, name = $4, email = $5, phone = $6, session_value = $7,
		       appointment_days = $8, appointment_time = $9, appointment_times = $10
		WHERE user_id = $1 AND id = $2
		RETURNING `+patientColumns,
		p.UserID, p.ID, p.ClinicID, p.Name, p.Email, p.Phone, p.SessionValue,
		p.AppointmentDays, p.AppointmentTime, p.AppointmentTimes)
	stored, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: update: %w", err)
	}
	return stored, nil
}

// SetAvatarURL records an uploaded avatar location.
func (r *Repository) SetAvatarURL(ctx context.Context, userID string, id int64, url string) error {
	var stored int64
	err := r.db.QueryRow(ctx, `
		UPDATE patients SET avatar_url = $3
		WHERE user_id = $1 AND id = $2
		RETURNING id`, userID, id, url).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("patients: set avatar: %w", err)
	}
	return nil
}

// Deactivate moves the patient into the deactivated partition through the
// server-side deactivate_patient procedure, which flips the flag atomically
// against the patient's appointments. Returns ErrNotFound when the patient
// does not belong to this practitioner.
func (r *Repository) Deactivate(ctx context.Context, userID string, id int64) error {
	return r.callPartitionProc(ctx, "deactivate_patient", userID, id)
}

// Activate is the reverse of Deactivate.
func (r *Repository) Activate(ctx context.Context, userID string, id int64) error {
	return r.callPartitionProc(ctx, "activate_patient", userID, id)
}

func (r *Repository) callPartitionProc(ctx context.Context, proc, userID string, id int64) error {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT `+proc+`($1, $2)`, userID, id).Scan(&ok)
	if err != nil {
		return fmt.Errorf("patients: %s: %w", proc, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// CountActive returns the active partition size, for plan quota checks.
func (r *Repository) CountActive(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM patients WHERE user_id = $1 AND is_active = true`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("patients: count active: %w", err)
	}
	return count, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.UserID, &p.ClinicID, &p.Name, &p.Email, &p.Phone, &p.AvatarURL,
		&p.SessionValue, &p.AppointmentDays, &p.AppointmentTime, &p.AppointmentTimes,
		&p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPatients(rows pgx.Rows) ([]Patient, error) {
	defer rows.Close()
	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.UserID, &p.ClinicID, &p.Name, &p.Email, &p.Phone, &p.AvatarURL,
			&p.SessionValue, &p.AppointmentDays, &p.AppointmentTime, &p.AppointmentTimes,
			&p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("patients: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patients: iterate: %w", err)
	}
	if out == nil {
		out = []Patient{}
	}
	return out, nil
}
