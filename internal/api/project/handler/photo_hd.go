package projectHandler

import (
	"FastGrapher/internal/api/photo"
	contextPkg "FastGrapher/pkg/context"
	"FastGrapher/pkg/handlerUtil"
	jwtPkg "FastGrapher/pkg/jwt"
	"FastGrapher/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *ProjectHandler) UploadPhoto(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	file, err := ctx.FormFile("photo")
	if err != nil {
		return errHandler.Handle(ctx, requestID, photo.ErrNoFile, ctx.Path(), "read_form_file")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"project_id": ctx.Params("id"),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing photo upload")

	data, mimeType, err := h.utils.ReadFormFile(file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, photo.FromUploadError(err), ctx.Path(), "read_form_file")
	}

	res, err := h.projectService.UploadPhoto(c, userData.ID, ctx.Params("id"), photo.UploadInput{
		OriginalName: file.Filename,
		MimeType:     mimeType,
		Data:         data,
	})
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_photo")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
	}
}

func (h *ProjectHandler) RemovePhoto(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	res, err := h.projectService.RemovePhoto(c, userData.ID, ctx.Params("id"), ctx.Params("photoId"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "remove_photo")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}
