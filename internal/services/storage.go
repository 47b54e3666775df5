package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage stores uploaded blobs and returns a public URL for each.
type Storage interface {
	Store(data []byte, name string) (string, error)
}

// DiskStorage writes blobs to a local directory served as static files.
type DiskStorage struct {
	dir     string
	baseURL string
}

// NewDiskStorage constructs DiskStorage, creating the directory if needed.
func NewDiskStorage(dir, baseURL string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Store writes the blob under a uuid-prefixed object name and returns its URL.
// The original name contributes only its extension.
func (s *DiskStorage) Store(data []byte, name string) (string, error) {
	objectName := uuid.New().String() + strings.ToLower(filepath.Ext(name))
	path := filepath.Join(s.dir, objectName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.baseURL + "/" + objectName, nil
}
