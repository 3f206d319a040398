package memory

import (
	"context"
	"sync"

	"github.com/cpsdqs/prechoster/pkg/domain"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.DocumentState
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.DocumentState),
	}
}

// Save persists the document in memory.
func (s *Store) Save(ctx context.Context, id string, doc domain.DocumentState) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := cloneDocument(doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = copied
	return nil
}

// Load retrieves the document from memory.
func (s *Store) Load(ctx context.Context, id string) (domain.DocumentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[id]
	if !ok {
		return domain.DocumentState{}, domain.ErrDocumentNotFound
	}

	// Copy on read so callers can't reach stored modules by pointer
	return cloneDocument(doc), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored document ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func cloneDocument(doc domain.DocumentState) domain.DocumentState {
	modules := make([]*domain.Module, len(doc.Modules))
	for i, m := range doc.Modules {
		modules[i] = m.Clone()
	}
	return doc.WithModules(modules)
}
