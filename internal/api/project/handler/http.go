package projectHandler

import (
	projectService "FastGrapher/internal/api/project/service"
	"FastGrapher/internal/middleware"
	"FastGrapher/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ProjectHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	projectService projectService.IProjectService
	utils          utils.IUtils
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ps projectService.IProjectService,
	utils utils.IUtils,
) *ProjectHandler {
	return &ProjectHandler{
		log:            log,
		validator:      validate,
		middleware:     middleware,
		projectService: ps,
		utils:          utils,
	}
}

func (h *ProjectHandler) Start(srv fiber.Router) {
	projects := srv.Group("/projects", h.middleware.NewTokenMiddleware)

	projects.Post("", h.CreateProject)
	projects.Get("", h.ListProjects)
	projects.Get("/:id", h.GetProject)
	projects.Patch("/:id", h.UpdateProject)
	projects.Delete("/:id", h.DeleteProject)

	projects.Post("/:id/photos", h.middleware.NewUploadRateLimiter, h.UploadPhoto)
	projects.Delete("/:id/photos/:photoId", h.RemovePhoto)
}
