// Package storage provides S3-compatible object storage for archived quote PDFs.
package storage

import (
	"context"
	"io"
	"time"

	"rental_quote_backend/platform/config"
)

// PresignedURL contains the URL and metadata for a presigned download.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StorageService defines the object storage operations the quote archive needs.
type StorageService interface {
	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// PutObject stores data under fileKey, replacing any previous object.
	PutObject(ctx context.Context, bucket, fileKey, contentType string, reader io.Reader, size int64) error

	// ObjectExists reports whether fileKey is present.
	ObjectExists(ctx context.Context, bucket, fileKey string) (bool, error)

	// GenerateDownloadURL creates a presigned GET URL.
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*PresignedURL, error)

	// DeleteObject removes an object.
	DeleteObject(ctx context.Context, bucket, fileKey string) error
}

// Config defines the configuration interface for storage.
type Config = config.MinIOConfig
