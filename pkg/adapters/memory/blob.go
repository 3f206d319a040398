package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/cpsdqs/prechoster/pkg/ports"
	"github.com/cpsdqs/prechoster/pkg/value"
)

const blobScheme = "mem://"

type blobEntry struct {
	mimeType string
	data     []byte
}

// BlobStore implements ports.BlobStore in memory.
// Safe for concurrent use.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blobEntry
}

// NewBlobStore creates an empty blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]blobEntry)}
}

// Put stores a copy of data under a fresh mem:// URL.
func (s *BlobStore) Put(ctx context.Context, mimeType string, data []byte) (*value.Blob, error) {
	url := blobScheme + uuid.NewString()

	s.mu.Lock()
	s.blobs[url] = blobEntry{mimeType: mimeType, data: slices.Clone(data)}
	s.mu.Unlock()

	return value.NewBlob(mimeType, url, func() {
		s.mu.Lock()
		delete(s.blobs, url)
		s.mu.Unlock()
	}), nil
}

// Get returns the data behind url.
func (s *BlobStore) Get(ctx context.Context, url string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.blobs[url]
	if !ok {
		return nil, "", ports.ErrBlobNotFound
	}
	return slices.Clone(e.data), e.mimeType, nil
}

// Len returns the number of live blobs.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
