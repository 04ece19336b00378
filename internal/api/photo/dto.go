package photo

import (
	"FastGrapher/internal/classifier"
	"FastGrapher/internal/entity"
	"time"
)

// FileRoute is where stored photo files are served from.
const FileRoute = "/api/v1/photos/file/"

type PhotoResponse struct {
	ID                 string    `json:"id"`
	Filename           string    `json:"filename"`
	OriginalName       string    `json:"originalName"`
	Path               string    `json:"path"`
	URL                string    `json:"url"`
	MimeType           string    `json:"mimeType"`
	Size               int64     `json:"size"`
	ProjectID          string    `json:"projectId"`
	HasClosedEyes      bool      `json:"hasClosedEyes"`
	NotLookingAtCamera bool      `json:"notLookingAtCamera"`
	NotLookingPath     string    `json:"notLookingPath,omitempty"`
	IsGroupPhoto       bool      `json:"isGroupPhoto"`
	GroupsPath         string    `json:"groupsPath,omitempty"`
	IsBlurry           bool      `json:"isBlurry"`
	BlurScore          float64   `json:"blurScore"`
	IsCentered         bool      `json:"isCentered"`
	CenterDistance     float64   `json:"centerDistance"`
	CreatedAt          time.Time `json:"createdAt"`
}

func NewPhotoResponse(p entity.Photo) PhotoResponse {
	return PhotoResponse{
		ID:                 p.ID,
		Filename:           p.Filename,
		OriginalName:       p.OriginalName,
		Path:               p.Path,
		URL:                FileRoute + p.Path,
		MimeType:           p.MimeType,
		Size:               p.Size,
		ProjectID:          p.ProjectID,
		HasClosedEyes:      p.HasClosedEyes,
		NotLookingAtCamera: p.NotLookingAtCamera,
		NotLookingPath:     p.NotLookingPath,
		IsGroupPhoto:       p.IsGroupPhoto,
		GroupsPath:         p.GroupsPath,
		IsBlurry:           p.IsBlurry,
		BlurScore:          p.BlurScore,
		IsCentered:         p.IsCentered,
		CenterDistance:     p.CenterDistance,
		CreatedAt:          p.CreatedAt,
	}
}

func NewPhotoResponses(photos []entity.Photo) []PhotoResponse {
	res := make([]PhotoResponse, 0, len(photos))
	for _, p := range photos {
		res = append(res, NewPhotoResponse(p))
	}
	return res
}

// UploadInput is an already read upload destined for a project.
type UploadInput struct {
	UserID       string
	ProjectID    string
	ProjectName  string
	OriginalName string
	MimeType     string
	Data         []byte
}

type UploadedPhoto struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalname"`
	Size         int64  `json:"size"`
}

type UploadResponse struct {
	Success        bool                            `json:"success"`
	Message        string                          `json:"message"`
	Photo          UploadedPhoto                   `json:"photo"`
	Classification classifier.ClassificationResult `json:"classification"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

type ListQuery struct {
	UserID    string
	ProjectID string
	Filter    entity.PhotoFilter
}

const MessageUploaded = "File uploaded successfully"

// ParseFilter maps a route segment to a filter; the empty string lists
// every photo.
func ParseFilter(s string) (entity.PhotoFilter, error) {
	switch f := entity.PhotoFilter(s); f {
	case entity.PhotoFilterAll, entity.PhotoFilterClosedEyes, entity.PhotoFilterNotLooking,
		entity.PhotoFilterGroups, entity.PhotoFilterBlurry:
		return f, nil
	}
	return entity.PhotoFilterAll, ErrInvalidFilter
}
