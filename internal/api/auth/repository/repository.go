package authRepository

import (
	"FastGrapher/internal/entity"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

// UserStore is the account table as seen by the auth and user services.
type UserStore interface {
	CreateUser(ctx context.Context, user entity.User) error
	GetByID(ctx context.Context, id string) (entity.User, error)
	GetByEmail(ctx context.Context, email string) (entity.User, error)
	UpdateProfile(ctx context.Context, user entity.User) error
	UpdatePassword(ctx context.Context, id string, password string) error
	MarkVerified(ctx context.Context, id string, at time.Time) error
	DeleteUser(ctx context.Context, id string) error
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	if !tx {
		noop := func() error { return nil }
		return Client{
			Users:    &userRepository{q: r.DB, log: r.log},
			Commit:   noop,
			Rollback: noop,
		}, nil
	}

	txx, err := r.DB.Beginx()
	if err != nil {
		r.log.WithField("error", err.Error()).Error("Failed to begin user transaction")
		return Client{}, err
	}

	return Client{
		Users:  &userRepository{q: txx, log: r.log},
		Commit: txx.Commit,
		// Services defer Rollback unconditionally, so a rollback after a
		// successful commit is not an error.
		Rollback: func() error {
			if err := txx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				return err
			}
			return nil
		},
	}, nil
}

type Client struct {
	Users UserStore

	Commit   func() error
	Rollback func() error
}

type userRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
