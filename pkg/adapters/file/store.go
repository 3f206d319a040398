package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/schema"
)

// ErrInvalidID is returned for document ids that cannot be used as file names.
var ErrInvalidID = errors.New("invalid document id")

// Store implements ports.DocumentStore using the local filesystem.
// Each document is one file in BasePath, written in the schema format.
type Store struct {
	BasePath string
	format   schema.Format
}

// Option configures a Store.
type Option func(*Store)

// WithFormat selects the file encoding. Defaults to JSON.
func WithFormat(format schema.Format) Option {
	return func(s *Store) {
		s.format = format
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".prechoster/documents".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".prechoster", "documents")
	}
	s := &Store{BasePath: basePath, format: schema.FormatJSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ext() string {
	if s.format == schema.FormatYAML {
		return ".yaml"
	}
	return ".json"
}

func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.BasePath, id+s.ext()), nil
}

// Save persists the document atomically.
// It writes to a temporary file first, syncs it and then renames it over the destination.
func (s *Store) Save(ctx context.Context, id string, doc domain.DocumentState) error {
	destPath, err := s.path(id)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure document directory: %w", err)
	}

	data, err := schema.Marshal(doc, s.format)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	// same directory, so the rename stays on one filesystem
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+id+"-*"+s.ext())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing document for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// Load reads and decodes a stored document.
func (s *Store) Load(ctx context.Context, id string) (domain.DocumentState, error) {
	filePath, err := s.path(id)
	if err != nil {
		return domain.DocumentState{}, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DocumentState{}, domain.ErrDocumentNotFound
		}
		return domain.DocumentState{}, fmt.Errorf("failed to read document file: %w", err)
	}

	doc, err := schema.Unmarshal(data, s.format)
	if err != nil {
		return domain.DocumentState{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return doc, nil
}

// Delete removes the document file. Missing documents are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return nil
}

// List returns the ids of every stored document.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != s.ext() || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, s.ext()))
	}
	return ids, nil
}
