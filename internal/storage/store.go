// Package storage is the object storage boundary used for recipe images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyPrefix namespaces every recipe image object.
const KeyPrefix = "recipes/"

// ErrObjectNotFound is returned when a key does not name a stored object.
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys this service could not have issued.
var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore uploads, links and deletes opaque binary objects.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

var keyPattern = regexp.MustCompile(`^recipes/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(jpg|png|gif|webp)$`)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// NewKey returns a fresh object key for contentType.
func NewKey(contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	return fmt.Sprintf("%s%s.%s", KeyPrefix, uuid.NewString(), ext), nil
}

// NormalizeKey accepts a full key or its bare object name and returns the
// full key, or ErrInvalidKey.
func NormalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, KeyPrefix) {
		key = KeyPrefix + key
	}
	if !keyPattern.MatchString(key) {
		return "", ErrInvalidKey
	}
	return key, nil
}
