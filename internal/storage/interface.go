package storage

import (
	"context"
	"io"
)

// ObjectStorage is the object store used to publish and read vocabulary documents.
type ObjectStorage interface {
	// EnsureBucket creates the configured bucket when it does not exist yet.
	EnsureBucket(ctx context.Context) error

	// Upload writes an object.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download opens an object for reading. The caller closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether an object is present.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the address an object can be fetched from.
	GetURL(key string) string
}
