package ports

import (
	"context"

	"github.com/cpsdqs/prechoster/pkg/domain"
)

// DocumentStore defines the interface for persisting documents.
type DocumentStore interface {
	// Save persists the document under id, replacing any previous version.
	Save(ctx context.Context, id string, doc domain.DocumentState) error

	// Load retrieves the document stored under id.
	// Returns domain.ErrDocumentNotFound if the document does not exist.
	Load(ctx context.Context, id string) (domain.DocumentState, error)

	// Delete removes the document stored under id.
	Delete(ctx context.Context, id string) error

	// List returns the ids of every stored document.
	List(ctx context.Context) ([]string, error)
}
