package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/schema"
)

// StdinRef names standard input as a document source.
const StdinRef = "-"

// ReadFile loads a document file, choosing the format from its extension.
func ReadFile(path string) (domain.DocumentState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.DocumentState{}, err
	}
	state, err := schema.Unmarshal(data, schema.FormatFromPath(path))
	if err != nil {
		return domain.DocumentState{}, fmt.Errorf("%s: %w", path, err)
	}
	return state, nil
}

// WriteFile saves a document, choosing the format from the extension.
func WriteFile(path string, state domain.DocumentState) error {
	data, err := schema.Marshal(state, schema.FormatFromPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// IsFile reports whether ref names an existing regular file.
func IsFile(ref string) bool {
	info, err := os.Stat(ref)
	return err == nil && info.Mode().IsRegular()
}

// LoadDocument resolves ref to a document. ref is "-" for JSON on in, a
// path to a document file, or the id of a document in the configured store.
func LoadDocument(ctx context.Context, ref string, in io.Reader, cfg Config, logger *slog.Logger) (domain.DocumentState, error) {
	switch {
	case ref == StdinRef:
		return schema.Decode(in, schema.FormatJSON)
	case IsFile(ref):
		return ReadFile(ref)
	}

	backend, err := OpenBackend(cfg, logger)
	if err != nil {
		return domain.DocumentState{}, err
	}
	defer backend.Close()

	state, err := backend.Store.Load(ctx, ref)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return domain.DocumentState{}, fmt.Errorf("%q is neither a file nor a stored document", ref)
	}
	return state, err
}
