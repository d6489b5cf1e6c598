package storage

import (
	"context"
	"fmt"

	"github.com/BerylCAtieno/document-analyzer-api/internal/config"
)

// Storage persists uploaded file blobs keyed by the document's storage path.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// New selects the blob backend from configuration.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case "s3":
		return NewS3Storage(cfg)
	case "local":
		return NewLocalStorage(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
