package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files on disk below root and serves them from publicURL.
type Local struct {
	root      string
	publicURL string
}

func NewLocal(root, publicURL string) *Local {
	return &Local{root: root, publicURL: strings.TrimRight(publicURL, "/")}
}

func (l *Local) Put(_ context.Context, filePath string, content []byte, _ string) error {
	rel, err := cleanPath(filePath)
	if err != nil {
		return err
	}
	full := filepath.Join(l.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Delete removes the file. A missing file is not an error.
func (l *Local) Delete(_ context.Context, filePath string) error {
	rel, err := cleanPath(filePath)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(l.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (l *Local) URL(filePath string) string {
	return l.publicURL + "/" + strings.TrimPrefix(filePath, "/")
}

// Root is the directory served under the public URL.
func (l *Local) Root() string {
	return l.root
}
