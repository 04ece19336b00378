package projectRepository

import (
	"FastGrapher/internal/api/project"
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

type ProjectDB struct {
	ID        sql.NullString `db:"id"`
	Name      sql.NullString `db:"name"`
	Type      sql.NullString `db:"type"`
	UserID    sql.NullString `db:"user_id"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *projectRepository) named(c context.Context, op string, query string, argsKV map[string]interface{}) (string, []interface{}, error) {
	query, args, err := sqlx.Named(query, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(c),
			"error":      err.Error(),
		}).Error(op + " named query preparation err")
		return "", nil, err
	}
	return r.q.Rebind(query), args, nil
}

// translate maps CHECK violations on projects.type to ErrInvalidType.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23514" {
		return project.ErrInvalidType
	}
	return err
}

func (r *projectRepository) CreateProject(c context.Context, p entity.Project) error {
	requestID := contextPkg.GetRequestID(c)
	now := time.Now()

	query, args, err := r.named(c, "CreateProject", queryCreateProject, map[string]interface{}{
		"id":         p.ID,
		"name":       p.Name,
		"type":       string(p.Type),
		"user_id":    p.UserID,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return err
	}

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating project")
		return translate(err)
	}

	return nil
}

func (r *projectRepository) GetProjectByID(c context.Context, id string) (entity.Project, error) {
	requestID := contextPkg.GetRequestID(c)
	var p ProjectDB

	query, args, err := r.named(c, "GetProjectByID", queryGetProjectByID, map[string]interface{}{"id": id})
	if err != nil {
		return entity.Project{}, err
	}

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"project_id": id,
			}).Warn("GetProjectByID no rows found")
			return entity.Project{}, project.ErrProjectNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetProjectByID execution err")
		return entity.Project{}, err
	}

	return r.makeProject(p), nil
}

func (r *projectRepository) ListProjectsByUser(c context.Context, userID string) ([]entity.Project, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := r.named(c, "ListProjectsByUser", queryListProjectsByUser, map[string]interface{}{"user_id": userID})
	if err != nil {
		return nil, err
	}

	var rows []ProjectDB
	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListProjectsByUser execution err")
		return nil, err
	}

	projects := make([]entity.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, r.makeProject(row))
	}
	return projects, nil
}

func (r *projectRepository) UpdateProject(c context.Context, p entity.Project) error {
	return r.write(c, "UpdateProject", queryUpdateProject, map[string]interface{}{
		"id":         p.ID,
		"name":       p.Name,
		"type":       string(p.Type),
		"updated_at": time.Now(),
	})
}

func (r *projectRepository) DeleteProject(c context.Context, id string) error {
	return r.write(c, "DeleteProject", queryDeleteProject, map[string]interface{}{"id": id})
}

func (r *projectRepository) write(c context.Context, op string, rawQuery string, argsKV map[string]interface{}) error {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := r.named(c, op, rawQuery, argsKV)
	if err != nil {
		return err
	}

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " execution err")
		return translate(err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) makeProject(p ProjectDB) entity.Project {
	return entity.Project{
		ID:        p.ID.String,
		Name:      p.Name.String,
		Type:      entity.ProjectType(p.Type.String),
		UserID:    p.UserID.String,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
