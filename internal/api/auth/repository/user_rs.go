package authRepository

import (
	"FastGrapher/internal/api/auth"
	"FastGrapher/internal/entity"
	contextPkg "FastGrapher/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type UserDB struct {
	ID         sql.NullString `db:"id"`
	Email      sql.NullString `db:"email"`
	Password   sql.NullString `db:"password"`
	Name       sql.NullString `db:"name"`
	Avatar     sql.NullString `db:"avatar"`
	IsActive   bool           `db:"is_active"`
	VerifiedAt sql.NullTime   `db:"verified_at"`
	CreatedAt  sql.NullTime   `db:"created_at"`
	UpdatedAt  sql.NullTime   `db:"updated_at"`
}

func (r *userRepository) exec(c context.Context, op string, query string, argsKV map[string]interface{}) (sql.Result, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(query, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	return r.q.ExecContext(c, query, args...)
}

func (r *userRepository) CreateUser(c context.Context, user entity.User) error {
	requestID := contextPkg.GetRequestID(c)
	now := time.Now()
	argsKV := map[string]interface{}{
		"id":         user.ID,
		"email":      user.Email,
		"password":   user.Password,
		"name":       user.Name,
		"is_active":  true,
		"created_at": now,
		"updated_at": now,
	}

	_, err := r.exec(c, "CreateUser", queryCreateUser, argsKV)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Email already exists")
			return auth.ErrEmailAlreadyExists
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating user")

		return err
	}

	return nil
}

func (r *userRepository) getOne(c context.Context, op string, query string, argsKV map[string]interface{}) (entity.User, error) {
	requestID := contextPkg.GetRequestID(c)
	var user UserDB

	query, args, err := sqlx.Named(query, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " named query preparation err")
		return entity.User{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn(op + " no rows found")
			return entity.User{}, auth.ErrUserNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " execution err")
		return entity.User{}, err
	}

	return r.makeUser(user), nil
}

func (r *userRepository) GetByID(c context.Context, id string) (entity.User, error) {
	return r.getOne(c, "GetByID", queryGetByID, map[string]interface{}{"id": id})
}

func (r *userRepository) GetByEmail(c context.Context, email string) (entity.User, error) {
	return r.getOne(c, "GetByEmail", queryGetByEmail, map[string]interface{}{"email": email})
}

func (r *userRepository) UpdateProfile(c context.Context, user entity.User) error {
	var avatar interface{}
	if user.Avatar != "" {
		avatar = user.Avatar
	}

	return r.update(c, "UpdateProfile", queryUpdateProfile, map[string]interface{}{
		"id":         user.ID,
		"name":       user.Name,
		"avatar":     avatar,
		"updated_at": time.Now(),
	})
}

func (r *userRepository) UpdatePassword(c context.Context, id string, password string) error {
	return r.update(c, "UpdatePassword", queryUpdatePassword, map[string]interface{}{
		"id":         id,
		"password":   password,
		"updated_at": time.Now(),
	})
}

func (r *userRepository) MarkVerified(c context.Context, id string, at time.Time) error {
	return r.update(c, "MarkVerified", queryMarkVerified, map[string]interface{}{
		"id":          id,
		"verified_at": at,
		"updated_at":  time.Now(),
	})
}

func (r *userRepository) DeleteUser(c context.Context, id string) error {
	return r.update(c, "DeleteUser", queryDeleteUser, map[string]interface{}{"id": id})
}

// update runs a single-row write and reports ErrUserNotFound when nothing
// matched.
func (r *userRepository) update(c context.Context, op string, query string, argsKV map[string]interface{}) error {
	requestID := contextPkg.GetRequestID(c)

	res, err := r.exec(c, op, query, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " execution err")
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn(op + " matched no user")
		return auth.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) makeUser(u UserDB) entity.User {
	user := entity.User{
		ID:        u.ID.String,
		Email:     u.Email.String,
		Password:  u.Password.String,
		Name:      u.Name.String,
		Avatar:    u.Avatar.String,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Time,
		UpdatedAt: u.UpdatedAt.Time,
	}

	if u.VerifiedAt.Valid {
		verifiedAt := u.VerifiedAt.Time
		user.VerifiedAt = &verifiedAt
	}

	return user
}
