package photo

import (
	"FastGrapher/pkg/response"
	"FastGrapher/pkg/utils"
	"errors"
	"net/http"
)

var (
	ErrPhotoNotFound     = response.NewCodedError(http.StatusNotFound, "PHOTO_NOT_FOUND", "photo not found")
	ErrPhotoNotOwned     = response.NewCodedError(http.StatusForbidden, "PHOTO_NOT_OWNED", "photo does not belong to user")
	ErrPhotoNotInProject = response.NewCodedError(http.StatusNotFound, "PHOTO_NOT_IN_PROJECT", "photo does not belong to this project")
	ErrInvalidFilter     = response.NewCodedError(http.StatusBadRequest, "INVALID_FILTER", "unknown photo filter")
	ErrFileNotFound      = response.NewCodedError(http.StatusNotFound, "FILE_NOT_FOUND", "file not found")
	ErrNoFile            = response.NewCodedError(http.StatusBadRequest, "NO_FILE", "no file uploaded")
	ErrNotAnImage        = response.NewCodedError(http.StatusBadRequest, "NOT_AN_IMAGE", "only image files are allowed")
	ErrFileTooLarge      = response.NewCodedError(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file size exceeds limit")
	ErrStoreFailed       = response.NewCodedError(http.StatusInternalServerError, "STORE_FAILED", "failed to store photo")
)

// FromUploadError turns multipart upload failures into client errors.
func FromUploadError(err error) error {
	switch {
	case errors.Is(err, utils.ErrNoFile):
		return ErrNoFile
	case errors.Is(err, utils.ErrNotAnImage):
		return ErrNotAnImage
	case errors.Is(err, utils.ErrFileTooLarge):
		return ErrFileTooLarge
	}
	return err
}
