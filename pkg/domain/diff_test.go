package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	a := &Module{ID: "a", Plugin: "text", Data: map[string]any{"contents": "foo"}, Sends: []ModuleID{OutputID}}
	b := &Module{ID: "b", Plugin: "text", Data: map[string]any{"contents": "bar"}}

	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		s := DocumentState{Title: "doc", Modules: []*Module{a, b}}
		got := Diff(nil, s)
		require.NotNil(t, got)
		require.NotNil(t, got.Title)
		assert.Equal(t, "doc", *got.Title)
		assert.Nil(t, got.TitleInPost)
		assert.Equal(t, []*Module{a, b}, got.Upserted)
		assert.Equal(t, []ModuleID{"a", "b"}, got.Order)
	})

	t.Run("No Changes", func(t *testing.T) {
		s := DocumentState{Title: "doc", Modules: []*Module{a, b}}
		assert.Nil(t, Diff(&s, s))
	})

	t.Run("Module Updated", func(t *testing.T) {
		old := DocumentState{Modules: []*Module{a, b}}
		b2 := b.WithData(map[string]any{"contents": "baz"})
		got := Diff(&old, old.WithModules([]*Module{a, b2}))
		require.NotNil(t, got)
		assert.Equal(t, []*Module{b2}, got.Upserted)
		assert.Nil(t, got.Order)
		assert.Nil(t, got.Title)
	})

	t.Run("Module Removed And Reordered", func(t *testing.T) {
		c := &Module{ID: "c", Plugin: "text"}
		old := DocumentState{Modules: []*Module{a, b, c}}
		got := Diff(&old, old.WithModules([]*Module{c, a}))
		require.NotNil(t, got)
		assert.Empty(t, got.Upserted)
		assert.Equal(t, []ModuleID{"b"}, got.Removed)
		assert.Equal(t, []ModuleID{"c", "a"}, got.Order)
	})

	t.Run("Title In Post Toggled", func(t *testing.T) {
		old := DocumentState{Title: "x"}
		next := old
		next.TitleInPost = true
		got := Diff(&old, next)
		require.NotNil(t, got)
		require.NotNil(t, got.TitleInPost)
		assert.True(t, *got.TitleInPost)
		assert.Nil(t, got.Title)
	})
}

func TestDiffJSONSerialization(t *testing.T) {
	old := DocumentState{Title: "same", Modules: []*Module{{ID: "a", Plugin: "text"}}}
	next := old.WithModules(nil)

	diff := Diff(&old, next)
	require.NotNil(t, diff)

	bytes, err := json.Marshal(diff)
	require.NoError(t, err)
	assert.JSONEq(t, `{"removed":["a"]}`, string(bytes))
}
