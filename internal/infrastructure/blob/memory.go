package blob

import (
	"context"
	"strings"
	"sync"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

const memoryScheme = "memory://"

// MemoryStore keeps artifacts in process memory. Data is copied on store and
// on retrieval.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]domain.Upload
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]domain.Upload)}
}

func (s *MemoryStore) Store(ctx context.Context, upload domain.Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := ObjectName(upload.MimeType, upload.Filename)
	cp := upload
	cp.Data = append([]byte(nil), upload.Data...)

	s.mu.Lock()
	s.objects[name] = cp
	s.mu.Unlock()
	return memoryScheme + name, nil
}

// Get returns a copy of the artifact behind url.
func (s *MemoryStore) Get(url string) (domain.Upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[strings.TrimPrefix(url, memoryScheme)]
	if !ok {
		return domain.Upload{}, false
	}
	obj.Data = append([]byte(nil), obj.Data...)
	return obj, true
}

// Len returns the number of stored artifacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
