package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AttachmentsHandler exposes ticket attachment endpoints.
type AttachmentsHandler struct {
	service *service.AttachmentService
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachmentService *service.AttachmentService) *AttachmentsHandler {
	return &AttachmentsHandler{service: attachmentService}
}

// Upload POST /tickets/:id/attachments (multipart field "file").
func (h *AttachmentsHandler) Upload(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required", nil)
	}
	upload := service.FileUpload{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get(fiber.HeaderContentType),
	}
	if err := service.ValidateFile(upload); err != nil {
		return err
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("file could not be read", nil)
	}
	defer file.Close()
	upload.Body = file

	res, err := h.service.Upload(c.UserContext(), upload, c.Params("id"), principal.Email())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(withWarnings(dto.NewAttachmentResponse(*res.Value), res.Warnings))
}

// List GET /tickets/:id/attachments.
func (h *AttachmentsHandler) List(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]dto.AttachmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, dto.NewAttachmentResponse(a))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Delete DELETE /attachments/:id.
func (h *AttachmentsHandler) Delete(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	res, err := h.service.Delete(c.UserContext(), c.Params("id"), principal.Email())
	if err != nil {
		return err
	}
	return c.JSON(withWarnings(dto.NewAttachmentResponse(*res.Value), res.Warnings))
}
