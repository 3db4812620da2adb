package server

import (
	"io"
	"time"

	"recipebox/internal/models"
	"recipebox/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ImageURLResponse carries a presigned download URL.
type ImageURLResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadImage handles POST /api/images
// @Summary Upload a recipe image
// @Description The returned key is set as a recipe's image_key
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "JPEG, PNG, GIF or WebP"
// @Success 201 {object} service.UploadedImage
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /images [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	if !s.images.Configured() {
		return mapServiceError(c, models.NewUnconfiguredError("Image storage"))
	}

	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
	}
	if file.Size > s.images.MaxUploadSizeBytes() {
		return mapServiceError(c, models.NewValidationError("File too large"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}

	uploaded, err := s.images.Upload(c.UserContext(), service.UploadImageInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(uploaded)
}

// GetImageURL handles GET /api/images/:key/url
// @Summary Presigned image URL
// @Tags images
// @Produce json
// @Param key path string true "Object key or its bare name"
// @Success 200 {object} ImageURLResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /images/{key}/url [get]
func (s *Server) GetImageURL(c *fiber.Ctx) error {
	key := pathParam(c, "key")
	url, ttl, err := s.images.PresignedURL(c.UserContext(), key)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(ImageURLResponse{
		Key:       key,
		URL:       url,
		ExpiresAt: time.Now().Add(ttl).UTC(),
	})
}

// DeleteImage handles DELETE /api/images/:key
// @Summary Delete an image object
// @Tags images
// @Param key path string true "Object key or its bare name"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /images/{key} [delete]
func (s *Server) DeleteImage(c *fiber.Ctx) error {
	if err := s.images.Delete(c.UserContext(), pathParam(c, "key")); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
