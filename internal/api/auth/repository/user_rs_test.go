package authRepository

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"FastGrapher/internal/api/auth"
	"FastGrapher/internal/entity"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "password", "name", "avatar", "is_active", "verified_at", "created_at", "updated_at"}

func newTestClient(t *testing.T) (Client, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := New(sqlx.NewDb(mockDB, "postgres"), logger).NewClient(false)
	require.NoError(t, err)
	return client, mock
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name       string
		beforeTest func(sqlmock.Sqlmock)
		wantErr    error
	}{
		{
			name: "success",
			beforeTest: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (id, email, password, name, is_active, created_at, updated_at)")).
					WithArgs("01J0", "ana@example.com", "hash", "Ana", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "duplicate email",
			beforeTest: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO users").
					WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
			},
			wantErr: auth.ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := newTestClient(t)
			tt.beforeTest(mock)

			err := client.Users.CreateUser(context.Background(), entity.User{
				ID: "01J0", Email: "ana@example.com", Password: "hash", Name: "Ana",
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetByEmail(t *testing.T) {
	verified := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	created := time.Date(2025, 4, 30, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		beforeTest func(sqlmock.Sqlmock)
		want       entity.User
		wantErr    error
	}{
		{
			name: "found",
			beforeTest: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1)")).
					WithArgs("Ana@Example.com").
					WillReturnRows(sqlmock.NewRows(userColumns).
						AddRow("01J0", "ana@example.com", "hash", "Ana", nil, true, verified, created, created))
			},
			want: entity.User{
				ID: "01J0", Email: "ana@example.com", Password: "hash", Name: "Ana",
				IsActive: true, VerifiedAt: &verified, CreatedAt: created, UpdatedAt: created,
			},
		},
		{
			name: "not found",
			beforeTest: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows(userColumns))
			},
			wantErr: auth.ErrUserNotFound,
		},
		{
			name: "db error",
			beforeTest: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM users").WillReturnError(errors.New("connection reset"))
			},
			wantErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := newTestClient(t)
			tt.beforeTest(mock)

			got, err := client.Users.GetByEmail(context.Background(), "Ana@Example.com")
			if tt.wantErr != nil {
				require.EqualError(t, err, tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.False(t, got.VerifiedAt == nil)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetByIDUnverified(t *testing.T) {
	client, mock := newTestClient(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("01J0").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("01J0", "ana@example.com", "hash", "Ana", "https://cdn.test/a.png", true, nil, time.Now(), time.Now()))

	got, err := client.Users.GetByID(context.Background(), "01J0")
	require.NoError(t, err)
	require.Nil(t, got.VerifiedAt)
	require.False(t, got.IsVerified())
	require.Equal(t, "https://cdn.test/a.png", got.Avatar)
}

func TestUpdatesReportMissingUser(t *testing.T) {
	client, mock := newTestClient(t)

	mock.ExpectExec(regexp.QuoteMeta("SET verified_at = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET password = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).
		WithArgs("01J0").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, client.Users.MarkVerified(ctx, "01J0", time.Now()))
	require.ErrorIs(t, client.Users.UpdatePassword(ctx, "missing", "hash"), auth.ErrUserNotFound)
	require.NoError(t, client.Users.DeleteUser(ctx, "01J0"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile(t *testing.T) {
	client, mock := newTestClient(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users\nSET name = $1")).
		WithArgs("Ana B", nil, sqlmock.AnyArg(), "01J0").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, client.Users.UpdateProfile(context.Background(), entity.User{ID: "01J0", Name: "Ana B"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionalClient(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := New(sqlx.NewDb(mockDB, "postgres"), logger)

	t.Run("commit then deferred rollback", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).
			WithArgs("01J0").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		client, err := repo.NewClient(true)
		require.NoError(t, err)
		require.NoError(t, client.Users.DeleteUser(context.Background(), "01J0"))
		require.NoError(t, client.Commit())
		require.NoError(t, client.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback without commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		client, err := repo.NewClient(true)
		require.NoError(t, err)
		require.NoError(t, client.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		_, err := repo.NewClient(true)
		require.EqualError(t, err, "pool exhausted")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
