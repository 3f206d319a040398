package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpsdqs/prechoster/pkg/domain"
)

func contractDocument(title string) domain.DocumentState {
	return domain.DocumentState{
		Title:       title,
		TitleInPost: true,
		Modules: []*domain.Module{
			{
				ID:         "a",
				Plugin:     "text",
				Data:       map[string]any{"contents": "hello", "language": "markdown"},
				Sends:      []domain.ModuleID{"b", domain.OutputID},
				NamedSends: map[domain.ModuleID][]string{"b": {"style"}},
			},
			{
				ID:       "b",
				Plugin:   "style-wrap",
				Data:     map[string]any{},
				Sends:    []domain.ModuleID{domain.OutputID},
				GraphPos: &domain.Position{X: 10, Y: 20},
				Title:    "wrapper",
			},
		},
	}
}

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore implementation
// adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	docID := "contract-test-doc-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		doc := contractDocument("contract")

		err := store.Save(ctx, docID, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "contract", loaded.Title)
		assert.True(t, loaded.TitleInPost)
		require.Len(t, loaded.Modules, 2)
		assert.Equal(t, domain.ModuleID("a"), loaded.Modules[0].ID)
		assert.Equal(t, "hello", loaded.Modules[0].Data["contents"])
		assert.Equal(t, []domain.ModuleID{"b", domain.OutputID}, loaded.Modules[0].Sends)
		assert.Equal(t, []string{"style"}, loaded.Modules[0].NamedSends["b"])
		require.NotNil(t, loaded.Modules[1].GraphPos)
		assert.Equal(t, 20.0, loaded.Modules[1].GraphPos.Y)
		assert.Equal(t, "wrapper", loaded.Modules[1].Title)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, docID, contractDocument("v2")))
		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "v2", loaded.Title)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, docID, contractDocument("to-delete"))
		require.NoError(t, err)

		err = store.Delete(ctx, docID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := docID + "-1"
		id2 := docID + "-2"
		_ = store.Save(ctx, id1, contractDocument("one"))
		_ = store.Save(ctx, id2, contractDocument("two"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunBlobStoreContract verifies a BlobStore implementation.
func RunBlobStoreContract(t *testing.T, store BlobStore) {
	ctx := context.Background()

	t.Run("Put and Get", func(t *testing.T) {
		blob, err := store.Put(ctx, "image/png", []byte{0x89, 'P', 'N', 'G'})
		require.NoError(t, err)
		defer blob.Release()

		assert.NotEmpty(t, blob.URL)
		assert.Equal(t, "image/png", blob.TypeID())

		data, mime, err := store.Get(ctx, blob.URL)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
		assert.Equal(t, "image/png", mime)
	})

	t.Run("Release Removes Data", func(t *testing.T) {
		blob, err := store.Put(ctx, "text/plain", []byte("bye"))
		require.NoError(t, err)

		blob.Release()
		blob.Release()

		_, _, err = store.Get(ctx, blob.URL)
		assert.ErrorIs(t, err, ErrBlobNotFound)
	})

	t.Run("Unknown URL", func(t *testing.T) {
		_, _, err := store.Get(ctx, "nowhere")
		assert.ErrorIs(t, err, ErrBlobNotFound)
	})
}
