package photoHandler

import (
	"FastGrapher/internal/api/photo"
	contextPkg "FastGrapher/pkg/context"
	"FastGrapher/pkg/handlerUtil"
	jwtPkg "FastGrapher/pkg/jwt"
	"FastGrapher/pkg/log"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const fileCacheControl = "public, max-age=31536000"

func (h *PhotoHandler) ListByProject(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	projectID := ctx.Params("projectId")
	if projectID == "" {
		return errHandler.HandleValidationError(ctx, requestID, errors.New("project ID is required"), ctx.Path())
	}

	photos, err := h.photoService.ListByProject(c, userData.ID, projectID, ctx.Params("filter"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_photos")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, photos)
	}
}

func (h *PhotoHandler) DeletePhoto(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.photoService.Delete(c, userData.ID, ctx.Params("photoId")); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_photo")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, photo.DeleteResponse{Success: true})
	}
}

// ServeFile streams a locally stored photo or redirects to a presigned
// URL when photos live in S3.
func (h *PhotoHandler) ServeFile(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	key := ctx.Params("*")
	loc, err := h.photoService.Locate(c, key)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "serve_file")
	}

	if loc.URL != "" {
		return ctx.Redirect(loc.URL, fiber.StatusFound)
	}

	ctx.Set(fiber.HeaderCacheControl, fileCacheControl)
	if ext := strings.TrimPrefix(path.Ext(key), "."); ext != "" {
		ctx.Type(strings.ToLower(ext))
	}
	return ctx.SendFile(loc.Path)
}

func (h *PhotoHandler) ClassifyPhoto(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	file, err := ctx.FormFile("photo")
	if err != nil {
		return errHandler.Handle(ctx, requestID, photo.ErrNoFile, ctx.Path(), "read_form_file")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing classify request")

	data, _, err := h.utils.ReadFormFile(file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, photo.FromUploadError(err), ctx.Path(), "read_form_file")
	}

	result := h.photoService.Classify(c, data)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}
