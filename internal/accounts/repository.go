package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists practitioner profiles.
type Repository struct {
	db db
}

// NewRepository creates a profile repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("accounts: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := r.db.QueryRow(ctx, `
		SELECT user_id, name, email, plan, avatar_url, created_at, updated_at
		FROM accounts WHERE user_id = $1`, userID).Scan(
		&p.UserID, &p.Name, &p.Email, &p.Plan, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("accounts: get profile: %w", err)
	}
	return &p, nil
}

func (r *Repository) Update(ctx context.Context, p Profile) (*Profile, error) {
	err := r.db.QueryRow(ctx, `
		UPDATE accounts SET name = $2, email = $3, plan = $4, avatar_url = $5, updated_at = $6
		WHERE user_id = $1
		RETURNING created_at, updated_at`,
		p.UserID, p.Name, p.Email, p.Plan, p.AvatarURL, time.Now()).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("accounts: update profile: %w", err)
	}
	return &p, nil
}

// ListUserIDs returns every account id, used by batch jobs that fan out
// over all practitioners.
func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM accounts ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("accounts: list user ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("accounts: scan user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetPlan returns just the account's plan tier.
func (r *Repository) GetPlan(ctx context.Context, userID string) (Plan, error) {
	var plan Plan
	err := r.db.QueryRow(ctx, `SELECT plan FROM accounts WHERE user_id = $1`, userID).Scan(&plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("accounts: get plan: %w", err)
	}
	return plan, nil
}
