package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

const (
	insertQ = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*salt,\s*master_key_verifier\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at$`
	selectQ = `(?s)^SELECT\s+id,\s*username,\s*master_key_verifier,\s*salt,\s*created_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertQ).
		WithArgs("alice", []byte("salt"), []byte("verifier")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-42", created))

	got, err := repo.Create(context.Background(), &models.User{UserName: "alice", Salt: []byte("salt"), Verifier: []byte("verifier")})
	require.NoError(t, err)
	require.Equal(t, "u-42", got.ID)
	require.Equal(t, created, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WithArgs("alice", []byte("salt"), []byte("verifier")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice", Salt: []byte("salt"), Verifier: []byte("verifier")})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice"})
	require.ErrorContains(t, err, "db error: db down")
}

func TestGetUserByLogin(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQ).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "master_key_verifier", "salt", "created_at"}).
			AddRow("u-1", "alice", []byte("ver"), []byte("salt"), time.Now()))

	got, err := repo.GetUserByLogin(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "u-1", got.ID)
	require.Equal(t, []byte("ver"), got.Verifier)
	require.Equal(t, []byte("salt"), got.Salt)
}

func TestGetUserByLogin_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByLogin(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetUserByLogin_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQ).WithArgs("alice").WillReturnError(errors.New("db err"))

	_, err := repo.GetUserByLogin(context.Background(), "alice")
	require.ErrorContains(t, err, "db error: db err")
}
