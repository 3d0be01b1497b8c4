package clinics

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// Repository persists clinics through database/sql.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, userID string) ([]Clinic, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, address, created_at, updated_at
		FROM clinics WHERE user_id = $1 ORDER BY name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Clinic
	for rows.Next() {
		var c Clinic
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if out == nil {
		out = []Clinic{}
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, userID string, id int64) (*Clinic, error) {
	var c Clinic
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, address, created_at, updated_at
		FROM clinics WHERE user_id = $1 AND id = $2`, userID, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) Insert(ctx context.Context, c Clinic) (*Clinic, error) {
	now := time.Now()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO clinics (user_id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at`,
		c.UserID, c.Name, c.Address, now).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapConstraint(err)
	}
	return &c, nil
}

func (r *Repository) Update(ctx context.Context, c Clinic) (*Clinic, error) {
	err := r.db.QueryRowContext(ctx, `
		UPDATE clinics SET name = $3, address = $4, updated_at = $5
		WHERE user_id = $1 AND id = $2
		RETURNING created_at, updated_at`,
		c.UserID, c.ID, c.Name, c.Address, time.Now()).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, mapConstraint(err)
	}
	return &c, nil
}

// Delete removes the clinic. Patients referencing it are detached by the
// schema's ON DELETE SET NULL, not removed.
func (r *Repository) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clinics WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// mapConstraint translates the per-account unique name index into the
// package sentinel.
func mapConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateName
	}
	return err
}
