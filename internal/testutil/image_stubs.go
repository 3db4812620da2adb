// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"time"

	"recipebox/internal/storage"
)

// MemoryObjectStore is an in-memory storage.ObjectStore for tests.
type MemoryObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	// Fail, when set, is returned by every operation.
	Fail error
}

// NewMemoryObjectStore creates an empty in-memory object store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

// Upload stores a copy of data under a fresh key.
func (s *MemoryObjectStore) Upload(_ context.Context, data []byte, contentType string) (string, error) {
	if s.Fail != nil {
		return "", s.Fail
	}
	key, err := storage.NewKey(contentType)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	s.types[key] = contentType
	return key, nil
}

// PresignedURL returns a fake URL for an existing key.
func (s *MemoryObjectStore) PresignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if s.Fail != nil {
		return "", s.Fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return "", storage.ErrObjectNotFound
	}
	return "https://objects.test/" + key + "?expires=" + ttl.String(), nil
}

// Delete removes key; a missing key is ErrObjectNotFound.
func (s *MemoryObjectStore) Delete(_ context.Context, key string) error {
	if s.Fail != nil {
		return s.Fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(s.objects, key)
	delete(s.types, key)
	return nil
}

// Has reports whether key is stored.
func (s *MemoryObjectStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (s *MemoryObjectStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
