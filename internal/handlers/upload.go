package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tillpoint/internal/services"
)

// UploadHandler stores catalog images through the blob storage collaborator.
type UploadHandler struct {
	storage services.Storage
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(storage services.Storage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// UploadImage accepts a multipart image and returns its public URL.
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded file")
	}

	url, err := h.storage.Store(data, fileHeader.Filename)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"url": url})
}
