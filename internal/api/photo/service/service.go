package photoService

import (
	"FastGrapher/internal/api/photo"
	photoRepository "FastGrapher/internal/api/photo/repository"
	"FastGrapher/internal/classifier"
	"FastGrapher/pkg/storage"
	"FastGrapher/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// Folders extra copies of a tagged photo are filed under.
const (
	ClosedEyesFolder = "closed-eyes"
	NotLookingFolder = "not-looking"
	GroupsFolder     = "groups"
)

// Classifier is the part of the classification engine uploads need.
type Classifier interface {
	ClassifyBytes(ctx context.Context, data []byte) classifier.ClassificationResult
}

type IPhotoService interface {
	Upload(ctx context.Context, in photo.UploadInput) (photo.UploadResponse, error)
	ListByProject(ctx context.Context, userID string, projectID string, filter string) ([]photo.PhotoResponse, error)
	Delete(ctx context.Context, userID string, photoID string) error
	RemoveFromProject(ctx context.Context, userID string, projectID string, photoID string) error
	RemoveByProject(ctx context.Context, projectID string) error
	RemoveByUser(ctx context.Context, userID string) error
	Classify(ctx context.Context, data []byte) classifier.ClassificationResult
	Locate(ctx context.Context, key string) (storage.Location, error)
}

type photoService struct {
	log             *logrus.Logger
	photoRepository photoRepository.Repository
	storage         storage.IStorage
	classifier      Classifier
	utils           utils.IUtils
}

func NewPhotoService(log *logrus.Logger, pr photoRepository.Repository, store storage.IStorage, cl Classifier, utils utils.IUtils) IPhotoService {
	return &photoService{
		log:             log,
		photoRepository: pr,
		storage:         store,
		classifier:      cl,
		utils:           utils,
	}
}
