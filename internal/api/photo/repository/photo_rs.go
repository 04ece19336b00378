package photoRepository

import (
	"FastGrapher/internal/api/photo"
	"FastGrapher/internal/entity"
	contextPkg "FastGrapher/pkg/context"
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

var errUnscopedList = errors.New("photo listing needs a user or project scope")

type PhotoDB struct {
	ID                 sql.NullString  `db:"id"`
	Filename           sql.NullString  `db:"filename"`
	OriginalName       sql.NullString  `db:"original_name"`
	Path               sql.NullString  `db:"path"`
	MimeType           sql.NullString  `db:"mime_type"`
	Size               sql.NullInt64   `db:"size"`
	ProjectID          sql.NullString  `db:"project_id"`
	UserID             sql.NullString  `db:"user_id"`
	HasClosedEyes      bool            `db:"has_closed_eyes"`
	NotLookingAtCamera bool            `db:"not_looking_at_camera"`
	NotLookingPath     sql.NullString  `db:"not_looking_path"`
	IsGroupPhoto       bool            `db:"is_group_photo"`
	GroupsPath         sql.NullString  `db:"groups_path"`
	IsBlurry           bool            `db:"is_blurry"`
	BlurScore          sql.NullFloat64 `db:"blur_score"`
	IsCentered         bool            `db:"is_centered"`
	CenterDistance     sql.NullFloat64 `db:"center_distance"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (r *photoRepository) named(c context.Context, op string, query string, argsKV map[string]interface{}) (string, []interface{}, error) {
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

func (r *photoRepository) CreatePhoto(c context.Context, p entity.Photo) error {
	requestID := contextPkg.GetRequestID(c)
	now := time.Now()
	argsKV := map[string]interface{}{
		"id":                    p.ID,
		"filename":              p.Filename,
		"original_name":         p.OriginalName,
		"path":                  p.Path,
		"mime_type":             p.MimeType,
		"size":                  p.Size,
		"project_id":            p.ProjectID,
		"user_id":               p.UserID,
		"has_closed_eyes":       p.HasClosedEyes,
		"not_looking_at_camera": p.NotLookingAtCamera,
		"not_looking_path":      nullable(p.NotLookingPath),
		"is_group_photo":        p.IsGroupPhoto,
		"groups_path":           nullable(p.GroupsPath),
		"is_blurry":             p.IsBlurry,
		"blur_score":            p.BlurScore,
		"is_centered":           p.IsCentered,
		"center_distance":       p.CenterDistance,
		"created_at":            now,
		"updated_at":            now,
	}

	query, args, err := r.named(c, "CreatePhoto", queryCreatePhoto, argsKV)
	if err != nil {
		return err
	}

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating photo")
		return err
	}

	return nil
}

func (r *photoRepository) GetPhotoByID(c context.Context, id string) (entity.Photo, error) {
	requestID := contextPkg.GetRequestID(c)
	var p PhotoDB

	query, args, err := r.named(c, "GetPhotoByID", queryGetPhotoByID, map[string]interface{}{"id": id})
	if err != nil {
		return entity.Photo{}, err
	}

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"photo_id":   id,
			}).Warn("GetPhotoByID no rows found")
			return entity.Photo{}, photo.ErrPhotoNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPhotoByID execution err")
		return entity.Photo{}, err
	}

	return r.makePhoto(p), nil
}

func (r *photoRepository) ListPhotos(c context.Context, q photo.ListQuery) ([]entity.Photo, error) {
	requestID := contextPkg.GetRequestID(c)

	rawQuery, argsKV, err := buildListQuery(q)
	if err != nil {
		return nil, err
	}

	query, args, err := r.named(c, "ListPhotos", rawQuery, argsKV)
	if err != nil {
		return nil, err
	}

	var rows []PhotoDB
	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListPhotos execution err")
		return nil, err
	}

	photos := make([]entity.Photo, 0, len(rows))
	for _, row := range rows {
		photos = append(photos, r.makePhoto(row))
	}
	return photos, nil
}

func buildListQuery(q photo.ListQuery) (string, map[string]interface{}, error) {
	var conds []string
	argsKV := map[string]interface{}{}

	if q.UserID != "" {
		conds = append(conds, "user_id = :user_id")
		argsKV["user_id"] = q.UserID
	}
	if q.ProjectID != "" {
		conds = append(conds, "project_id = :project_id")
		argsKV["project_id"] = q.ProjectID
	}
	if len(conds) == 0 {
		return "", nil, errUnscopedList
	}

	switch q.Filter {
	case entity.PhotoFilterAll:
	case entity.PhotoFilterClosedEyes:
		conds = append(conds, "has_closed_eyes = TRUE")
	case entity.PhotoFilterNotLooking:
		conds = append(conds, "not_looking_at_camera = TRUE")
	case entity.PhotoFilterGroups:
		conds = append(conds, "is_group_photo = TRUE")
	case entity.PhotoFilterBlurry:
		conds = append(conds, "is_blurry = TRUE")
	default:
		return "", nil, photo.ErrInvalidFilter
	}

	query := photoColumns + "\n    WHERE " + strings.Join(conds, " AND ") + "\nORDER BY created_at DESC"
	return query, argsKV, nil
}

func (r *photoRepository) DeletePhoto(c context.Context, id string) error {
	n, err := r.delete(c, "DeletePhoto", queryDeletePhoto, map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return photo.ErrPhotoNotFound
	}
	return nil
}

func (r *photoRepository) DeletePhotosByProject(c context.Context, projectID string) (int64, error) {
	return r.delete(c, "DeletePhotosByProject", queryDeletePhotosByProject, map[string]interface{}{"project_id": projectID})
}

func (r *photoRepository) DeletePhotosByUser(c context.Context, userID string) (int64, error) {
	return r.delete(c, "DeletePhotosByUser", queryDeletePhotosByUser, map[string]interface{}{"user_id": userID})
}

func (r *photoRepository) delete(c context.Context, op string, rawQuery string, argsKV map[string]interface{}) (int64, error) {
	query, args, err := r.named(c, op, rawQuery, argsKV)
	if err != nil {
		return 0, err
	}

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(c),
			"error":      err.Error(),
		}).Error(op + " execution err")
		return 0, err
	}

	return res.RowsAffected()
}

func (r *photoRepository) makePhoto(p PhotoDB) entity.Photo {
	return entity.Photo{
		ID:                 p.ID.String,
		Filename:           p.Filename.String,
		OriginalName:       p.OriginalName.String,
		Path:               p.Path.String,
		MimeType:           p.MimeType.String,
		Size:               p.Size.Int64,
		ProjectID:          p.ProjectID.String,
		UserID:             p.UserID.String,
		HasClosedEyes:      p.HasClosedEyes,
		NotLookingAtCamera: p.NotLookingAtCamera,
		NotLookingPath:     p.NotLookingPath.String,
		IsGroupPhoto:       p.IsGroupPhoto,
		GroupsPath:         p.GroupsPath.String,
		IsBlurry:           p.IsBlurry,
		BlurScore:          p.BlurScore.Float64,
		IsCentered:         p.IsCentered,
		CenterDistance:     p.CenterDistance.Float64,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
