package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ImageStore persists uploaded product images. The HTTP layer treats it as
// an external collaborator; implementations may block.
type ImageStore interface {
	Save(ctx context.Context, productID, filename string, r io.Reader) (string, error)
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// LocalImageStore writes images to a directory on local disk
type LocalImageStore struct {
	dir string
}

// NewLocalImageStore creates the store, ensuring the target directory exists
func NewLocalImageStore(dir string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &LocalImageStore{dir: dir}, nil
}

// Save stores the image under a name derived from the product ID, never from
// client input, and returns the stored path.
func (s *LocalImageStore) Save(ctx context.Context, productID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}

	path := filepath.Join(s.dir, productID+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return path, nil
}
