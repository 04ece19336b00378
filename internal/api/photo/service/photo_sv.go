package photoService

import (
	"FastGrapher/internal/api/photo"
	"FastGrapher/internal/classifier"
	"FastGrapher/internal/entity"
	contextPkg "FastGrapher/pkg/context"
	"FastGrapher/pkg/storage"
	"errors"
	"path"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *photoService) Upload(ctx context.Context, in photo.UploadInput) (photo.UploadResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if len(in.Data) == 0 {
		return photo.UploadResponse{}, photo.ErrNoFile
	}

	result := s.classifier.ClassifyBytes(ctx, in.Data)

	now := time.Now()
	filename, err := s.utils.StorageFileName(in.ProjectName, in.OriginalName, now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate file name")
		return photo.UploadResponse{}, err
	}

	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return photo.UploadResponse{}, err
	}

	p := entity.Photo{
		ID:                 id,
		Filename:           filename,
		OriginalName:       in.OriginalName,
		Path:               primaryKey(filename, result),
		MimeType:           in.MimeType,
		Size:               int64(len(in.Data)),
		ProjectID:          in.ProjectID,
		UserID:             in.UserID,
		HasClosedEyes:      result.HasClosedEyes,
		NotLookingAtCamera: result.NotLookingAtCamera,
		IsGroupPhoto:       result.IsGroupPhoto,
		IsBlurry:           result.IsBlurry,
		BlurScore:          result.BlurScore,
		IsCentered:         result.IsCentered,
		CenterDistance:     result.CenterDistance,
	}
	if result.NotLookingAtCamera {
		p.NotLookingPath = path.Join(NotLookingFolder, filename)
	}
	if result.IsGroupPhoto {
		p.GroupsPath = path.Join(GroupsFolder, filename)
	}

	var stored []string
	for _, key := range p.StorageKeys() {
		if err := s.storage.Put(ctx, key, in.Data, in.MimeType); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"key":        key,
				"error":      err.Error(),
			}).Error("Failed to store photo")
			s.removeFiles(ctx, stored)
			return photo.UploadResponse{}, photo.ErrStoreFailed
		}
		stored = append(stored, key)
	}

	repo, err := s.photoRepository.NewClient(false)
	if err != nil {
		s.removeFiles(ctx, stored)
		return photo.UploadResponse{}, err
	}

	if err := repo.Photos.CreatePhoto(ctx, p); err != nil {
		s.removeFiles(ctx, stored)
		return photo.UploadResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":    requestID,
		"photo_id":      p.ID,
		"project_id":    p.ProjectID,
		"closed_eyes":   result.HasClosedEyes,
		"not_looking":   result.NotLookingAtCamera,
		"group":         result.IsGroupPhoto,
		"blurry":        result.IsBlurry,
		"blur_score":    result.BlurScore,
		"centered":      result.IsCentered,
		"storage_paths": stored,
	}).Info("Photo uploaded")

	return photo.UploadResponse{
		Success: true,
		Message: photo.MessageUploaded,
		Photo: photo.UploadedPhoto{
			ID:           p.ID,
			Filename:     p.Filename,
			OriginalName: p.OriginalName,
			Size:         p.Size,
		},
		Classification: result,
	}, nil
}

// primaryKey files photos with closed eyes under their review folder
// instead of the storage root.
func primaryKey(filename string, result classifier.ClassificationResult) string {
	if result.HasClosedEyes {
		return path.Join(ClosedEyesFolder, filename)
	}
	return filename
}

func (s *photoService) ListByProject(ctx context.Context, userID string, projectID string, filter string) ([]photo.PhotoResponse, error) {
	f, err := photo.ParseFilter(filter)
	if err != nil {
		return nil, err
	}

	repo, err := s.photoRepository.NewClient(false)
	if err != nil {
		return nil, err
	}

	photos, err := repo.Photos.ListPhotos(ctx, photo.ListQuery{UserID: userID, ProjectID: projectID, Filter: f})
	if err != nil {
		return nil, err
	}

	return photo.NewPhotoResponses(photos), nil
}

func (s *photoService) Delete(ctx context.Context, userID string, photoID string) error {
	_, err := s.remove(ctx, userID, photoID, func(entity.Photo) error { return nil })
	return err
}

func (s *photoService) RemoveFromProject(ctx context.Context, userID string, projectID string, photoID string) error {
	_, err := s.remove(ctx, userID, photoID, func(p entity.Photo) error {
		if p.ProjectID != projectID {
			return photo.ErrPhotoNotInProject
		}
		return nil
	})
	return err
}

func (s *photoService) remove(ctx context.Context, userID string, photoID string, check func(entity.Photo) error) (entity.Photo, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.photoRepository.NewClient(false)
	if err != nil {
		return entity.Photo{}, err
	}

	p, err := repo.Photos.GetPhotoByID(ctx, photoID)
	if err != nil {
		return entity.Photo{}, err
	}

	if p.UserID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"photo_id":   photoID,
			"user_id":    userID,
		}).Warn("Photo does not belong to user")
		return entity.Photo{}, photo.ErrPhotoNotOwned
	}

	if err := check(p); err != nil {
		return entity.Photo{}, err
	}

	if err := repo.Photos.DeletePhoto(ctx, p.ID); err != nil {
		return entity.Photo{}, err
	}

	s.removeFiles(ctx, p.StorageKeys())
	return p, nil
}

func (s *photoService) RemoveByProject(ctx context.Context, projectID string) error {
	repo, err := s.photoRepository.NewClient(false)
	if err != nil {
		return err
	}

	photos, err := repo.Photos.ListPhotos(ctx, photo.ListQuery{ProjectID: projectID})
	if err != nil {
		return err
	}

	if _, err := repo.Photos.DeletePhotosByProject(ctx, projectID); err != nil {
		return err
	}

	s.removePhotoFiles(ctx, photos)
	return nil
}

func (s *photoService) RemoveByUser(ctx context.Context, userID string) error {
	repo, err := s.photoRepository.NewClient(false)
	if err != nil {
		return err
	}

	photos, err := repo.Photos.ListPhotos(ctx, photo.ListQuery{UserID: userID})
	if err != nil {
		return err
	}

	if _, err := repo.Photos.DeletePhotosByUser(ctx, userID); err != nil {
		return err
	}

	s.removePhotoFiles(ctx, photos)
	return nil
}

func (s *photoService) Classify(ctx context.Context, data []byte) classifier.ClassificationResult {
	return s.classifier.ClassifyBytes(ctx, data)
}

func (s *photoService) Locate(ctx context.Context, key string) (storage.Location, error) {
	loc, err := s.storage.Locate(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return storage.Location{}, photo.ErrFileNotFound
		}
		return storage.Location{}, err
	}
	return loc, nil
}

func (s *photoService) removePhotoFiles(ctx context.Context, photos []entity.Photo) {
	for _, p := range photos {
		s.removeFiles(ctx, p.StorageKeys())
	}
}

// removeFiles deletes stored copies; failures only leave orphans behind, so
// they are logged and skipped.
func (s *photoService) removeFiles(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"key":        key,
				"error":      err.Error(),
			}).Warn("Failed to delete stored file")
		}
	}
}
