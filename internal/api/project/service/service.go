package projectService

import (
	"FastGrapher/internal/api/photo"
	photoService "FastGrapher/internal/api/photo/service"
	"FastGrapher/internal/api/project"
	projectRepository "FastGrapher/internal/api/project/repository"
	"FastGrapher/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IProjectService interface {
	CreateProject(ctx context.Context, userID string, req project.CreateProjectRequest) (project.ProjectResponse, error)
	ListProjects(ctx context.Context, userID string) ([]project.ProjectResponse, error)
	GetProject(ctx context.Context, userID string, id string) (project.ProjectDetailResponse, error)
	UpdateProject(ctx context.Context, userID string, id string, req project.UpdateProjectRequest) (project.ProjectResponse, error)
	DeleteProject(ctx context.Context, userID string, id string) error
	UploadPhoto(ctx context.Context, userID string, id string, file photo.UploadInput) (photo.UploadResponse, error)
	RemovePhoto(ctx context.Context, userID string, id string, photoID string) (project.ProjectDetailResponse, error)
}

type projectService struct {
	log               *logrus.Logger
	projectRepository projectRepository.Repository
	photoService      photoService.IPhotoService
	utils             utils.IUtils
}

func NewProjectService(log *logrus.Logger, pr projectRepository.Repository, ps photoService.IPhotoService, utils utils.IUtils) IProjectService {
	return &projectService{
		log:               log,
		projectRepository: pr,
		photoService:      ps,
		utils:             utils,
	}
}
