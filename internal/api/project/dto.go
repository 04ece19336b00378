package project

import (
	"FastGrapher/internal/api/photo"
	"FastGrapher/internal/entity"
	"time"
)

type CreateProjectRequest struct {
	Name string             `json:"name" validate:"required,min=1,max=255"`
	Type entity.ProjectType `json:"type" validate:"omitempty,project_type"`
}

type UpdateProjectRequest struct {
	Name *string             `json:"name" validate:"omitempty,min=1,max=255"`
	Type *entity.ProjectType `json:"type" validate:"omitempty,project_type"`
}

type ProjectResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      entity.ProjectType `json:"type"`
	UserID    string             `json:"userId"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ProjectDetailResponse is a project together with its photos.
type ProjectDetailResponse struct {
	ProjectResponse
	Photos []photo.PhotoResponse `json:"photos"`
}

func NewProjectResponse(p entity.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.Type,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
