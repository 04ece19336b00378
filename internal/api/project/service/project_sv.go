package projectService

import (
	"FastGrapher/internal/api/photo"
	"FastGrapher/internal/api/project"
	"FastGrapher/internal/entity"
	contextPkg "FastGrapher/pkg/context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *projectService) CreateProject(ctx context.Context, userID string, req project.CreateProjectRequest) (project.ProjectResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	projectType := req.Type
	if projectType == "" {
		projectType = entity.ProjectOtherEvent
	}
	if !projectType.Valid() {
		return project.ProjectResponse{}, project.ErrInvalidType
	}

	repo, err := s.projectRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return project.ProjectResponse{}, err
	}

	now := time.Now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return project.ProjectResponse{}, err
	}

	p := entity.Project{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		Type:      projectType,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := repo.Projects.CreateProject(ctx, p); err != nil {
		return project.ProjectResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"project_id": p.ID,
		"user_id":    userID,
	}).Info("Project created")

	return project.NewProjectResponse(p), nil
}

func (s *projectService) ListProjects(ctx context.Context, userID string) ([]project.ProjectResponse, error) {
	repo, err := s.projectRepository.NewClient(false)
	if err != nil {
		return nil, err
	}

	projects, err := repo.Projects.ListProjectsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]project.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		res = append(res, project.NewProjectResponse(p))
	}
	return res, nil
}

func (s *projectService) GetProject(ctx context.Context, userID string, id string) (project.ProjectDetailResponse, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return project.ProjectDetailResponse{}, err
	}
	return s.withPhotos(ctx, p)
}

func (s *projectService) UpdateProject(ctx context.Context, userID string, id string, req project.UpdateProjectRequest) (project.ProjectResponse, error) {
	if req.Name == nil && req.Type == nil {
		return project.ProjectResponse{}, project.ErrNothingToUpdate
	}

	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return project.ProjectResponse{}, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return project.ProjectResponse{}, project.ErrInvalidType
		}
		p.Type = *req.Type
	}

	repo, err := s.projectRepository.NewClient(false)
	if err != nil {
		return project.ProjectResponse{}, err
	}

	if err := repo.Projects.UpdateProject(ctx, p); err != nil {
		return project.ProjectResponse{}, err
	}
	p.UpdatedAt = time.Now()

	return project.NewProjectResponse(p), nil
}

// DeleteProject removes the project's photos and their files before the
// project row itself.
func (s *projectService) DeleteProject(ctx context.Context, userID string, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.photoService.RemoveByProject(ctx, p.ID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"project_id": p.ID,
			"error":      err.Error(),
		}).Error("Failed to remove project photos")
		return err
	}

	repo, err := s.projectRepository.NewClient(false)
	if err != nil {
		return err
	}

	if err := repo.Projects.DeleteProject(ctx, p.ID); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"project_id": p.ID,
	}).Info("Project deleted")

	return nil
}

func (s *projectService) UploadPhoto(ctx context.Context, userID string, id string, file photo.UploadInput) (photo.UploadResponse, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return photo.UploadResponse{}, err
	}

	file.UserID = userID
	file.ProjectID = p.ID
	file.ProjectName = p.Name

	return s.photoService.Upload(ctx, file)
}

func (s *projectService) RemovePhoto(ctx context.Context, userID string, id string, photoID string) (project.ProjectDetailResponse, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return project.ProjectDetailResponse{}, err
	}

	if err := s.photoService.RemoveFromProject(ctx, userID, p.ID, photoID); err != nil {
		return project.ProjectDetailResponse{}, err
	}

	return s.withPhotos(ctx, p)
}

// owned loads the project and checks it belongs to userID.
func (s *projectService) owned(ctx context.Context, userID string, id string) (entity.Project, error) {
	repo, err := s.projectRepository.NewClient(false)
	if err != nil {
		return entity.Project{}, err
	}

	p, err := repo.Projects.GetProjectByID(ctx, id)
	if err != nil {
		return entity.Project{}, err
	}

	if p.UserID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"project_id": id,
			"user_id":    userID,
		}).Warn("Project does not belong to user")
		return entity.Project{}, project.ErrProjectNotOwned
	}

	return p, nil
}

func (s *projectService) withPhotos(ctx context.Context, p entity.Project) (project.ProjectDetailResponse, error) {
	photos, err := s.photoService.ListByProject(ctx, p.UserID, p.ID, "")
	if err != nil {
		return project.ProjectDetailResponse{}, err
	}

	return project.ProjectDetailResponse{
		ProjectResponse: project.NewProjectResponse(p),
		Photos:          photos,
	}, nil
}
