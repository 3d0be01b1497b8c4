package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RevenueSummary aggregates billable earnings for a period. Only completed
// and no_show appointments belonging to currently active patients count;
// canceled and no_status rows contribute zero regardless of session value.
type RevenueSummary struct {
	UserID           string  `json:"user_id"`
	Total            float64 `json:"total"`
	BillableCount    int64   `json:"billable_count"`
	CompletedCount   int64   `json:"completed_count"`
	NoShowCount      int64   `json:"no_show_count"`
	ActivePatients   int64   `json:"active_patients"`
	PeriodStart      string  `json:"period_start"`
	PeriodEnd        string  `json:"period_end"`
}

// MonthlyRevenue is one month's slice of the summary.
type MonthlyRevenue struct {
	Month string  `json:"month"` // "2006-01"
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

type revenueDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RevenueRepository queries revenue aggregates from the database.
type RevenueRepository struct {
	db revenueDB
}

// NewRevenueRepository creates a new revenue repository.
func NewRevenueRepository(pool *pgxpool.Pool) *RevenueRepository {
	if pool == nil {
		panic("reports: pgx pool required for revenue")
	}
	return &RevenueRepository{db: pool}
}

// NewRevenueRepositoryWithDB allows injecting a mock database for testing.
func NewRevenueRepositoryWithDB(db revenueDB) *RevenueRepository {
	return &RevenueRepository{db: db}
}

const billableFilter = `
	a.status IN ('completed', 'no_show')
	AND p.is_active = TRUE`

// GetSummary aggregates billable revenue for the account. Optional
// start/end date keys (inclusive start, exclusive end) filter the period;
// both nil means all-time.
func (r *RevenueRepository) GetSummary(ctx context.Context, userID string, start, end *time.Time) (*RevenueSummary, error) {
	summary := &RevenueSummary{UserID: userID}

	var dateFilter string
	args := []any{userID}
	if start != nil && end != nil {
		dateFilter = " AND a.date >= $2 AND a.date < $3"
		args = append(args, start.Format("2006-01-02"), end.Format("2006-01-02"))
		summary.PeriodStart = start.Format("2006-01-02")
		summary.PeriodEnd = end.Format("2006-01-02")
	} else {
		summary.PeriodStart = "all-time"
		summary.PeriodEnd = "now"
	}

	query := `
		SELECT COALESCE(SUM(p.session_value), 0),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE a.status = 'completed'),
		       COUNT(*) FILTER (WHERE a.status = 'no_show')
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.user_id = $1 AND ` + billableFilter + dateFilter
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&summary.Total, &summary.BillableCount, &summary.CompletedCount, &summary.NoShowCount); err != nil {
		return nil, fmt.Errorf("reports: revenue summary: %w", err)
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE user_id = $1 AND is_active = TRUE`, userID).
		Scan(&summary.ActivePatients); err != nil {
		return nil, fmt.Errorf("reports: count active patients: %w", err)
	}
	return summary, nil
}

// GetMonthly breaks billable revenue down per calendar month, newest first.
func (r *RevenueRepository) GetMonthly(ctx context.Context, userID string, months int) ([]MonthlyRevenue, error) {
	if months <= 0 {
		months = 12
	}
	rows, err := r.db.Query(ctx, `
		SELECT substring(a.date from 1 for 7) AS month,
		       COALESCE(SUM(p.session_value), 0),
		       COUNT(*)
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.user_id = $1 AND `+billableFilter+`
		GROUP BY month
		ORDER BY month DESC
		LIMIT $2`, userID, months)
	if err != nil {
		return nil, fmt.Errorf("reports: monthly revenue: %w", err)
	}
	defer rows.Close()

	var out []MonthlyRevenue
	for rows.Next() {
		var m MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Total, &m.Count); err != nil {
			return nil, fmt.Errorf("reports: scan monthly revenue: %w", err)
		}
		out = append(out, m)
	}
	if out == nil {
		out = []MonthlyRevenue{}
	}
	return out, rows.Err()
}
