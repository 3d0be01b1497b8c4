package clinics

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, name, address, created_at, updated_at\s+FROM clinics WHERE user_id = \$1 ORDER BY name ASC`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "address", "created_at", "updated_at"}).
			AddRow(int64(1), "user-1", "Centro", "Rua A, 10", now, now).
			AddRow(int64(2), "user-1", "Zona Sul", "Av B, 200", now, now))

	repo := NewRepository(db)
	out, err := repo.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Centro", out[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, name, address`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "address", "created_at", "updated_at"}))

	repo := NewRepository(db)
	out, err := repo.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestRepositoryInsertDuplicateName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO clinics`).
		WithArgs("user-1", "Centro", "Rua A, 10", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "clinics_user_id_name_key"})

	repo := NewRepository(db)
	_, err = repo.Insert(context.Background(), Clinic{UserID: "user-1", Name: "Centro", Address: "Rua A, 10"})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRepositoryGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, name, address`).
		WithArgs("user-1", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "address", "created_at", "updated_at"}))

	repo := NewRepository(db)
	_, err = repo.Get(context.Background(), "user-1", 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM clinics WHERE user_id = \$1 AND id = \$2`).
		WithArgs("user-1", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewRepository(db)
	require.NoError(t, repo.Delete(context.Background(), "user-1", 3))

	mock.ExpectExec(`DELETE FROM clinics`).
		WithArgs("user-1", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "user-1", 4), ErrNotFound)
}
