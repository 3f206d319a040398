package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpsdqs/prechoster/pkg/adapters/file"
	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/ports"
	"github.com/cpsdqs/prechoster/pkg/schema"
)

func TestFileStore_Contract(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		ports.RunDocumentStoreContract(t, file.New(t.TempDir()))
	})
	t.Run("yaml", func(t *testing.T) {
		ports.RunDocumentStoreContract(t, file.New(t.TempDir(), file.WithFormat(schema.FormatYAML)))
	})
}

func TestFileBlobStore_Contract(t *testing.T) {
	ports.RunBlobStoreContract(t, file.NewBlobStore(t.TempDir()))
}

func TestFileStore_WritesSchemaFormat(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	doc := domain.DocumentState{Title: "hello", Modules: []*domain.Module{
		{ID: "a", Plugin: "text", Data: map[string]any{}, Sends: []domain.ModuleID{domain.OutputID}},
	}}
	require.NoError(t, store.Save(ctx, "post", doc))

	data, err := os.ReadFile(filepath.Join(dir, "post.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": 2`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_LegacyFile(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"title": "old", "titleInPost": false, "modules": [{"id": "a", "plugin": "text", "data": {}, "sends": ["output"]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.json"), []byte(legacy), 0644))

	doc, err := file.New(dir).Load(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, "old", doc.Title)
	assert.Equal(t, []domain.ModuleID{domain.OutputID}, doc.Modules[0].Sends)
}

func TestFileStore_InvalidID(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "../escape", `a\b`, ".."} {
		t.Run(id, func(t *testing.T) {
			err := store.Save(ctx, id, domain.NewDocumentState())
			assert.ErrorIs(t, err, file.ErrInvalidID)
			_, err = store.Load(ctx, id)
			assert.ErrorIs(t, err, file.ErrInvalidID)
		})
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nope"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
