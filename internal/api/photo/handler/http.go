package photoHandler

import (
	photoService "FastGrapher/internal/api/photo/service"
	"FastGrapher/internal/middleware"
	"FastGrapher/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type PhotoHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	photoService photoService.IPhotoService
	utils        utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ps photoService.IPhotoService,
	utils utils.IUtils,
) *PhotoHandler {
	return &PhotoHandler{
		log:          log,
		validator:    validator,
		middleware:   middleware,
		photoService: ps,
		utils:        utils,
	}
}

func (h *PhotoHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	photos := srv.Group("/photos")
	photos.Get("/file/*", h.ServeFile)

	photos.Use("/ws", wsMiddleware)
	photos.Get("/ws", h.middleware.NewTokenMiddleware, h.middleware.NewUploadRateLimiter, websocket.New(h.handleStream))

	photos.Post("/classify", h.middleware.NewTokenMiddleware, h.middleware.NewUploadRateLimiter, h.ClassifyPhoto)
	photos.Get("/project/:projectId", h.middleware.NewTokenMiddleware, h.ListByProject)
	photos.Get("/project/:projectId/:filter", h.middleware.NewTokenMiddleware, h.ListByProject)
	photos.Delete("/:photoId", h.middleware.NewTokenMiddleware, h.DeletePhoto)
}
