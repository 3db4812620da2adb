package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"recipebox/internal/config"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/observability"
	"recipebox/internal/storage"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 10
	DefaultPresignTTL           = time.Hour
)

type UploadImageInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// UploadedImage describes a stored image object.
type UploadedImage struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	SizeBytes   int    `json:"size_bytes"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// ImageService validates and stores recipe images. With a nil store every
// operation fails with UNCONFIGURED.
type ImageService struct {
	store              storage.ObjectStore
	maxUploadSizeBytes int64
	presignTTL         time.Duration
}

func NewImageService(store storage.ObjectStore, cfg *config.Config) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	presignTTL := DefaultPresignTTL

	if cfg != nil {
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
		if cfg.StoragePresignTTLMinutes > 0 {
			presignTTL = time.Duration(cfg.StoragePresignTTLMinutes) * time.Minute
		}
	}

	return &ImageService{
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		presignTTL:         presignTTL,
	}
}

// Configured reports whether object storage is available.
func (s *ImageService) Configured() bool {
	return s.store != nil
}

// MaxUploadSizeBytes is the largest accepted upload.
func (s *ImageService) MaxUploadSizeBytes() int64 {
	return s.maxUploadSizeBytes
}

// Upload checks that the content really is a supported image and stores it
// under a fresh key.
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*UploadedImage, error) {
	if s.store == nil {
		return nil, models.NewUnconfiguredError("Image storage")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	sourceMimeType := decodedFormatToMime(format)
	if sourceMimeType == "" {
		return nil, models.NewValidationError("Unsupported image format")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, sourceMimeType) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	key, err := s.store.Upload(ctx, in.Content, sourceMimeType)
	observability.ImageOperations.WithLabelValues("upload", observability.Outcome(err)).Inc()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "image uploaded",
		slog.String("key", key),
		slog.String("filename", in.Filename),
		slog.Int("size", len(in.Content)),
	)
	return &UploadedImage{
		Key:         key,
		ContentType: sourceMimeType,
		SizeBytes:   len(in.Content),
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// PresignedURL returns a time-limited GET URL for key. key may be the full
// object key or its bare name.
func (s *ImageService) PresignedURL(ctx context.Context, key string) (string, time.Duration, error) {
	if s.store == nil {
		return "", 0, models.NewUnconfiguredError("Image storage")
	}
	fullKey, err := storage.NormalizeKey(key)
	if err != nil {
		return "", 0, models.NewValidationError("Invalid image key")
	}

	url, err := s.store.PresignedURL(ctx, fullKey, s.presignTTL)
	observability.ImageOperations.WithLabelValues("presign", observability.Outcome(err)).Inc()
	if err != nil {
		return "", 0, mapStorageError(fullKey, err)
	}
	return url, s.presignTTL, nil
}

func (s *ImageService) Delete(ctx context.Context, key string) error {
	if s.store == nil {
		return models.NewUnconfiguredError("Image storage")
	}
	fullKey, err := storage.NormalizeKey(key)
	if err != nil {
		return models.NewValidationError("Invalid image key")
	}

	err = s.store.Delete(ctx, fullKey)
	observability.ImageOperations.WithLabelValues("delete", observability.Outcome(err)).Inc()
	if err != nil {
		return mapStorageError(fullKey, err)
	}
	return nil
}

func mapStorageError(key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotFound) {
		return &models.AppError{Code: models.CodeNotFound, Message: "Image '" + key + "' not found"}
	}
	return models.NewInternalError(err)
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
