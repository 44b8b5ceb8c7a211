package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"avilegal.backend/internal/config"
)

var ErrInvalidPath = errors.New("invalid storage path")

// Storage persists uploaded files under slash-separated relative paths.
type Storage interface {
	Put(ctx context.Context, filePath string, content []byte, contentType string) error
	Delete(ctx context.Context, filePath string) error
	URL(filePath string) string
}

// New returns the Cloudinary adapter when configured, otherwise local disk.
func New(cfg config.StorageConfig) (Storage, error) {
	if cfg.CloudinaryURL != "" {
		return NewCloudinary(cfg.CloudinaryURL)
	}
	return NewLocal(cfg.Root, cfg.PublicURL), nil
}

func cleanPath(filePath string) (string, error) {
	if filePath == "" || strings.Contains(filePath, "\\") {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean("/" + filePath)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(filePath, "/") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}
