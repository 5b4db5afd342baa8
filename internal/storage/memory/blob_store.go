// Package memory provides in-process stores for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// BlobStore keeps archived artifacts in a map and returns memory:// URIs.
type BlobStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	types map[string]string
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		data:  make(map[string][]byte),
		types: make(map[string]string),
	}
}

// PutObject stores a copy of data under path.
func (s *BlobStore) PutObject(_ context.Context, path string, contentType string, data []byte) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[path] = append([]byte(nil), data...)
	s.types[path] = contentType
	return "memory://" + path, nil
}

// Object returns the stored bytes and content type for path.
func (s *BlobStore) Object(path string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[path]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), data...), s.types[path], true
}

// Paths lists stored paths in sorted order.
func (s *BlobStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.data))
	for p := range s.data {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
