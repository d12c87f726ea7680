// Package storage archives raw listing uploads in S3-compatible object
// storage so the original file behind a task can be audited later.
package storage

import (
	"context"
	"io"
)

// ObjectStorage defines the interface for archive storage operations
type ObjectStorage interface {
	// Upload stores an object
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download retrieves an object
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)
}
