package ports

import (
	"context"
	"io"
)

// BlobStore holds uploaded file contents keyed by the stored file name.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get returns an error wrapping domain.ErrNotFound when key does not exist.
	// The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is a no-op for a missing key.
	Delete(ctx context.Context, key string) error
}

// BlobCleaner removes blobs asynchronously after their metadata is gone.
type BlobCleaner interface {
	Enqueue(key string)
}
