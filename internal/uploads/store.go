// Package uploads stores raw image bytes on disk and serves them back by
// URL. Filenames derive from a random UUID rather than a timestamp, so
// concurrent uploads can never collide.
package uploads

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path stored files are served under.
const URLPrefix = "/uploads/"

// FileStore writes uploaded files into a single directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the upload directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the backing directory, for static file serving.
func (s *FileStore) Dir() string { return s.dir }

// Save writes data under a UUID-derived name keeping the original
// extension, and returns the public URL.
func (s *FileStore) Save(data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String() + ext

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return URLPrefix + name, nil
}
