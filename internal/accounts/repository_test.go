package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func TestRepositoryGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT user_id, name, email, plan, avatar_url, created_at, updated_at\s+FROM accounts WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "name", "email", "plan", "avatar_url", "created_at", "updated_at"}).
			AddRow("user-1", "Marina", "marina@example.com", Plan("free"), "", now, now))

	repo := NewRepositoryWithDB(mock)
	p, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.Plan != PlanFree {
		t.Errorf("plan = %s, want free", p.Plan)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT user_id, name, email, plan`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "name", "email", "plan", "avatar_url", "created_at", "updated_at"}))

	repo := NewRepositoryWithDB(mock)
	if _, err := repo.Get(context.Background(), "ghost"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRepositoryListUserIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT user_id FROM accounts ORDER BY user_id`).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).
			AddRow("user-1").
			AddRow("user-2"))

	repo := NewRepositoryWithDB(mock)
	ids, err := repo.ListUserIDs(context.Background())
	if err != nil {
		t.Fatalf("ListUserIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "user-1" || ids[1] != "user-2" {
		t.Errorf("ids = %v, want [user-1 user-2]", ids)
	}
}

func TestRepositoryGetPlan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT plan FROM accounts WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"plan"}).AddRow(Plan("premium")))

	repo := NewRepositoryWithDB(mock)
	plan, err := repo.GetPlan(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if plan != PlanPremium {
		t.Errorf("plan = %s, want premium", plan)
	}
}
