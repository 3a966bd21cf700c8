package storage

import (
	"context"
	"io"
	"time"
)

// FileStorage abstracts where attachment bytes live. The service layer owns
// the metadata rows; implementations only deal in opaque storage keys.
type FileStorage interface {
	// Save stores the file and returns its storage key
	Save(ctx context.Context, fileName, contentType string, body io.Reader) (string, error)

	// Delete removes the stored bytes for a key
	Delete(ctx context.Context, key string) error

	// DownloadURL returns a time-limited URL for fetching the file
	DownloadURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
