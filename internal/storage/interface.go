package storage

import (
	"context"
	"io"
)

// ObjectStorage is the bucket that joke snapshots are written to.
type ObjectStorage interface {
	// EnsureBucket creates the bucket when the backend allows it.
	EnsureBucket(ctx context.Context) error

	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns where an uploaded object can be fetched from.
	GetURL(key string) string
}
