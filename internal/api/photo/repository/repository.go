package photoRepository

import (
	"FastGrapher/internal/api/photo"
	"FastGrapher/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
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
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Photos:   &photoRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Client struct {
	Photos interface {
		CreatePhoto(c context.Context, p entity.Photo) error
		GetPhotoByID(c context.Context, id string) (entity.Photo, error)
		ListPhotos(c context.Context, q photo.ListQuery) ([]entity.Photo, error)
		DeletePhoto(c context.Context, id string) error
		DeletePhotosByProject(c context.Context, projectID string) (int64, error)
		DeletePhotosByUser(c context.Context, userID string) (int64, error)
	}

	Commit   func() error
	Rollback func() error
}

type photoRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
