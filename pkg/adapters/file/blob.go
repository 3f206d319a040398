package file

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/cpsdqs/prechoster/pkg/ports"
	"github.com/cpsdqs/prechoster/pkg/value"
)

const blobScheme = "file://"

// BlobStore implements ports.BlobStore with one file per blob.
// The MIME type is kept in a sidecar file next to the data.
type BlobStore struct {
	dir string
}

// NewBlobStore stores blobs under dir. If dir is empty a directory under
// os.TempDir is used.
func NewBlobStore(dir string) *BlobStore {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "prechoster-blobs")
	}
	return &BlobStore{dir: dir}
}

// Put writes data to a fresh file and returns a blob that deletes it on release.
func (s *BlobStore) Put(ctx context.Context, mimeType string, data []byte) (*value.Blob, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure blob directory: %w", err)
	}

	name := uuid.NewString()
	if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
		name += exts[0]
	}
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write blob: %w", err)
	}
	if err := os.WriteFile(path+".type", []byte(mimeType), 0644); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write blob type: %w", err)
	}

	return value.NewBlob(mimeType, blobScheme+filepath.ToSlash(path), func() {
		_ = os.Remove(path)
		_ = os.Remove(path + ".type")
	}), nil
}

// Get reads the data behind a file:// URL produced by Put.
func (s *BlobStore) Get(ctx context.Context, url string) ([]byte, string, error) {
	if !strings.HasPrefix(url, blobScheme) {
		return nil, "", ports.ErrBlobNotFound
	}
	path := filepath.FromSlash(strings.TrimPrefix(url, blobScheme))
	if filepath.Dir(path) != filepath.Clean(s.dir) {
		return nil, "", ports.ErrBlobNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ports.ErrBlobNotFound
		}
		return nil, "", fmt.Errorf("failed to read blob: %w", err)
	}
	mimeType, err := os.ReadFile(path + ".type")
	if err != nil {
		return nil, "", fmt.Errorf("failed to read blob type: %w", err)
	}
	return data, string(mimeType), nil
}
