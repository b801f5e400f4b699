// Package storage provides object storage for column segments. Datasets
// live under one key per column; the engine only ever reads whole segments
// and the import path only ever writes them, so the interface stays small.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/diana-hep/femtocode/pkg/config"
)

// Storage is the interface for column segment storage.
type Storage interface {
	// Upload writes a segment from reader to the specified key.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// UploadFile writes a local file as the segment at the specified key.
	UploadFile(ctx context.Context, key string, localPath string) error

	// Download opens the segment at the specified key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the segment at the specified key.
	Delete(ctx context.Context, key string) error

	// Exists checks whether a segment exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the location of the segment, for diagnostics.
	URL(key string) string
}

// Type represents the storage backend.
type Type string

const (
	// TypeLocal stores segments on the local filesystem.
	TypeLocal Type = "local"
	// TypeCOS stores segments in Tencent Cloud COS.
	TypeCOS Type = "cos"
)

// New creates a Storage instance from the configuration.
func New(cfg *config.StorageConfig) (Storage, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	switch Type(cfg.Type) {
	case TypeCOS:
		return NewCOSStorage(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	default:
		return NewLocalStorage(cfg.LocalPath)
	}
}

// ValidateConfig validates the storage configuration.
func ValidateConfig(cfg *config.StorageConfig) error {
	if cfg == nil {
		return fmt.Errorf("storage config is nil")
	}

	switch Type(cfg.Type) {
	case TypeCOS:
		if cfg.Bucket == "" || cfg.Region == "" {
			return fmt.Errorf("COS bucket and region are required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return fmt.Errorf("COS credentials are required")
		}
	case TypeLocal, "":
		if cfg.LocalPath == "" {
			return fmt.Errorf("local storage path is required")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
	return nil
}
