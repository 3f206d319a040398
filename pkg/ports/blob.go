package ports

import (
	"context"
	"errors"

	"github.com/cpsdqs/prechoster/pkg/value"
)

// ErrBlobNotFound is returned when a blob URL does not resolve.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore holds binary data outside the evaluated values and hands out
// URL handles for it. Releasing a returned blob removes the data.
type BlobStore interface {
	// Put stores data and returns a blob referencing it.
	Put(ctx context.Context, mimeType string, data []byte) (*value.Blob, error)

	// Get returns the data and MIME type behind a blob URL.
	// Returns ErrBlobNotFound once the blob was released.
	Get(ctx context.Context, url string) ([]byte, string, error)
}
