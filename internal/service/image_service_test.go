package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"strings"
	"testing"
	"time"

	"recipebox/internal/config"
	"recipebox/internal/models"
	"recipebox/internal/storage"
	"recipebox/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageServiceUploadAndPresign(t *testing.T) {
	store := testutil.NewMemoryObjectStore()
	svc := NewImageService(store, &config.Config{ImageMaxUploadSizeMB: 1, StoragePresignTTLMinutes: 5})
	ctx := context.Background()

	content := testutil.TinyPNG(t, 120, 80)
	img, err := svc.Upload(ctx, UploadImageInput{
		Filename:    "cake.png",
		ContentType: "image/png",
		Content:     content,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.Key, storage.KeyPrefix))
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, 120, img.Width)
	assert.Equal(t, 80, img.Height)
	assert.Equal(t, len(content), img.SizeBytes)
	assert.True(t, store.Has(img.Key))

	url, ttl, err := svc.PresignedURL(ctx, img.Key)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)
	assert.Contains(t, url, img.Key)

	bare := strings.TrimPrefix(img.Key, storage.KeyPrefix)
	_, _, err = svc.PresignedURL(ctx, bare)
	require.NoError(t, err, "bare object names resolve")

	require.NoError(t, svc.Delete(ctx, img.Key))
	assert.Zero(t, store.Len())

	_, _, err = svc.PresignedURL(ctx, img.Key)
	assertAppErrorCode(t, models.CodeNotFound, err)
	assertAppErrorCode(t, models.CodeNotFound, svc.Delete(ctx, img.Key))
}

func TestImageServiceUploadJPEG(t *testing.T) {
	svc := NewImageService(testutil.NewMemoryObjectStore(), nil)

	src := image.NewRGBA(image.Rect(0, 0, 64, 48))
	rng := rand.New(rand.NewSource(7))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, &jpeg.Options{Quality: 80}))

	img, err := svc.Upload(context.Background(), UploadImageInput{
		Filename:    "noise.jpg",
		ContentType: "image/jpg",
		Content:     buf.Bytes(),
	})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.ContentType)
	assert.True(t, strings.HasSuffix(img.Key, ".jpg"))
}

func TestImageServiceRejects(t *testing.T) {
	store := testutil.NewMemoryObjectStore()
	svc := NewImageService(store, &config.Config{ImageMaxUploadSizeMB: 1})
	ctx := context.Background()
	png := testutil.TinyPNG(t, 4, 4)

	cases := []struct {
		name string
		in   UploadImageInput
	}{
		{"empty", UploadImageInput{Filename: "a.png", ContentType: "image/png"}},
		{"not an image", UploadImageInput{Filename: "a.txt", ContentType: "text/plain", Content: []byte("hello world")}},
		{"truncated", UploadImageInput{Filename: "a.png", ContentType: "image/png", Content: png[:16]}},
		{"type mismatch", UploadImageInput{Filename: "a.gif", ContentType: "image/gif", Content: png}},
		{"too large", UploadImageInput{Filename: "a.png", ContentType: "image/png", Content: append(append([]byte(nil), png...), make([]byte, 1<<20)...)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tc.in)
			assertValidationError(t, err)
		})
	}
	assert.Zero(t, store.Len())

	_, _, err := svc.PresignedURL(ctx, "../secrets.png")
	assertValidationError(t, err)
}

func TestImageServiceStoreFailure(t *testing.T) {
	store := testutil.NewMemoryObjectStore()
	store.Fail = errors.New("bucket offline")
	svc := NewImageService(store, nil)

	_, err := svc.Upload(context.Background(), UploadImageInput{
		Filename: "a.png",
		Content:  testutil.TinyPNG(t, 2, 2),
	})
	assertAppErrorCode(t, models.CodeInternal, err)
}

func TestImageServiceUnconfigured(t *testing.T) {
	svc := NewImageService(nil, nil)
	ctx := context.Background()
	assert.False(t, svc.Configured())
	assert.EqualValues(t, DefaultImageMaxUploadSizeMB*1024*1024, svc.MaxUploadSizeBytes())

	_, err := svc.Upload(ctx, UploadImageInput{Content: testutil.TinyPNG(t, 2, 2)})
	assertAppErrorCode(t, models.CodeUnconfigured, err)

	_, _, err = svc.PresignedURL(ctx, "whatever.png")
	assertAppErrorCode(t, models.CodeUnconfigured, err)

	assertAppErrorCode(t, models.CodeUnconfigured, svc.Delete(ctx, "whatever.png"))
}
