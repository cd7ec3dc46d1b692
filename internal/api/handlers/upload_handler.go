package handlers

import (
	"RecipeCards-Backend/domain"
	"RecipeCards-Backend/internal/api/presenters"
	"RecipeCards-Backend/pkg/upload"
	"bufio"
	"context"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type (
	UploadHandler interface {
		UploadRecipe(c *fiber.Ctx) error
		UploadRecipeStream(c *fiber.Ctx) error
		UploadRecipeStreamParallel(c *fiber.Ctx) error
	}

	uploadHandler struct {
		uploadService upload.UploadService
	}
)

func NewUploadHandler(uploadService upload.UploadService) UploadHandler {
	return &uploadHandler{uploadService: uploadService}
}

// UploadRecipe is the synchronous flow: the whole AI result is awaited,
// persisted in one transaction and returned as a normal JSON response.
func (h *uploadHandler) UploadRecipe(c *fiber.Ctx) error {
	req, errResp := h.buildUploadRequest(c)
	if errResp != nil {
		return errResp
	}

	res, err := h.uploadService.ProcessRecipe(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUploadRecipe, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessUploadRecipe)
}

// UploadRecipeStream relays the AI event stream to the client as
// server-sent events while menus are persisted page by page. All
// request-rejection errors are returned before streaming begins; once
// the stream is open, failures travel in-band as error events.
func (h *uploadHandler) UploadRecipeStream(c *fiber.Ctx) error {
	return h.streamUpload(c, h.uploadService.StreamRecipe)
}

// UploadRecipeStreamParallel drives the inference service's
// concurrent-page endpoint; the client-facing stream contract is the
// same as the sequential variant.
func (h *uploadHandler) UploadRecipeStreamParallel(c *fiber.Ctx) error {
	return h.streamUpload(c, h.uploadService.StreamRecipeParallel)
}

func (h *uploadHandler) streamUpload(c *fiber.Ctx, stream func(context.Context, domain.UploadRecipeRequest, *upload.Emitter)) error {
	req, errResp := h.buildUploadRequest(c)
	if errResp != nil {
		return errResp
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	ctx := c.Context()
	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		stream(ctx, *req, upload.NewEmitter(w))
	})
	return nil
}

func (h *uploadHandler) buildUploadRequest(c *fiber.Ctx) (*domain.UploadRecipeRequest, error) {
	userID := c.Locals("user_id").(uint)

	file, err := c.FormFile("recipe")
	if err != nil {
		return nil, presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageNoFileUploaded, domain.ErrNoFileUploaded)
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "application/pdf" && !strings.HasPrefix(contentType, "image/") {
		return nil, presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageInvalidFileType, domain.ErrInvalidFileType)
	}

	data, err := readMultipartFile(file)
	if err != nil {
		return nil, presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadRecipe, err)
	}

	return &domain.UploadRecipeRequest{
		FileName:    file.Filename,
		ContentType: contentType,
		Data:        data,
		UserID:      userID,
	}, nil
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
