package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory FileStorage used in tests and when no object
// store is configured.
type MemoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailDelete makes Delete return an error, for exercising the
	// best-effort removal path.
	FailDelete bool
}

// NewMemoryStorage creates an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: map[string][]byte{}}
}

// Save stores the file and returns its storage key
func (s *MemoryStorage) Save(ctx context.Context, fileName, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	key := "mem/" + uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = data
	return key, nil
}

// Delete removes the stored bytes for a key
func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailDelete {
		return fmt.Errorf("delete failed for %s", key)
	}
	delete(s.files, key)
	return nil
}

// DownloadURL returns a fake URL for the key
func (s *MemoryStorage) DownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[key]; !ok {
		return "", fmt.Errorf("no such file: %s", key)
	}
	return "memory://" + key, nil
}

// Len reports how many files are stored
func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
