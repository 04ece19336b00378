package entity

import "time"

// Photo is an uploaded image together with the tags the classifier assigned
// to it. Path is the storage key of the primary copy; NotLookingPath and
// GroupsPath hold the extra copies filed under their review folders.
type Photo struct {
	ID                 string    `db:"id"`
	Filename           string    `db:"filename"`
	OriginalName       string    `db:"original_name"`
	Path               string    `db:"path"`
	MimeType           string    `db:"mime_type"`
	Size               int64     `db:"size"`
	ProjectID          string    `db:"project_id"`
	UserID             string    `db:"user_id"`
	HasClosedEyes      bool      `db:"has_closed_eyes"`
	NotLookingAtCamera bool      `db:"not_looking_at_camera"`
	NotLookingPath     string    `db:"not_looking_path"`
	IsGroupPhoto       bool      `db:"is_group_photo"`
	GroupsPath         string    `db:"groups_path"`
	IsBlurry           bool      `db:"is_blurry"`
	BlurScore          float64   `db:"blur_score"`
	IsCentered         bool      `db:"is_centered"`
	CenterDistance     float64   `db:"center_distance"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// StorageKeys lists every stored copy of the photo.
func (p Photo) StorageKeys() []string {
	keys := []string{p.Path}
	if p.NotLookingPath != "" {
		keys = append(keys, p.NotLookingPath)
	}
	if p.GroupsPath != "" {
		keys = append(keys, p.GroupsPath)
	}
	return keys
}

type PhotoFilter string

const (
	PhotoFilterAll        PhotoFilter = ""
	PhotoFilterClosedEyes PhotoFilter = "closed-eyes"
	PhotoFilterNotLooking PhotoFilter = "not-looking"
	PhotoFilterGroups     PhotoFilter = "groups"
	PhotoFilterBlurry     PhotoFilter = "blurry"
)
