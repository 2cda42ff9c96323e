package storage

import (
	"context"
	"io"
)

// Storage is the minimal interface for evidence photo storage backends.
type Storage interface {
	// Put stores an object under the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get retrieves an object by key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object by key. Returns nil if it does not exist.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for a stored object.
	GetURL(key string) string
}

// Config holds S3/MinIO connection settings
type Config struct {
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}
