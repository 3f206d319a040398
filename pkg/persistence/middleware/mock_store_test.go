package middleware_test

import (
	"context"

	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]domain.DocumentState
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.DocumentState),
	}
}

func (s *MockStore) Save(ctx context.Context, id string, doc domain.DocumentState) error {
	s.data[id] = doc
	return nil
}

func (s *MockStore) Load(ctx context.Context, id string) (domain.DocumentState, error) {
	doc, ok := s.data[id]
	if !ok {
		return domain.DocumentState{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *MockStore) Delete(ctx context.Context, id string) error {
	delete(s.data, id)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.DocumentStore = (*MockStore)(nil)
