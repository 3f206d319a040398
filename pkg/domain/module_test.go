package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_WithHelpersLeaveReceiverUntouched(t *testing.T) {
	orig := &Module{
		ID:         "a",
		Plugin:     "text",
		Data:       map[string]any{"contents": "x"},
		Sends:      []ModuleID{"b"},
		NamedSends: map[ModuleID][]string{"c": {"style"}},
	}

	next := orig.WithSend("d").WithNamedSend("c", "body").WithTitle("T")

	assert.NotSame(t, orig, next)
	assert.Equal(t, []ModuleID{"b"}, orig.Sends)
	assert.Equal(t, []string{"style"}, orig.NamedSends["c"])
	assert.Empty(t, orig.Title)

	assert.Equal(t, []ModuleID{"b", "d"}, next.Sends)
	assert.Equal(t, []string{"body", "style"}, next.NamedSends["c"])
	assert.Equal(t, "T", next.Title)
}

func TestModule_WithSendNoDuplicates(t *testing.T) {
	m := (&Module{ID: "a"}).WithSend("b").WithSend("b")
	assert.Equal(t, []ModuleID{"b"}, m.Sends)
}

func TestModule_WithoutSend(t *testing.T) {
	m := &Module{
		ID:         "a",
		Sends:      []ModuleID{"b", "c"},
		NamedSends: map[ModuleID][]string{"b": {"n"}, "c": {"m"}},
	}

	got := m.WithoutSend("b")
	assert.Equal(t, []ModuleID{"c"}, got.Sends)
	_, ok := got.NamedSends["b"]
	assert.False(t, ok)
	assert.False(t, got.References("b"))
	assert.True(t, got.References("c"))
	assert.True(t, m.References("b"))
}

func TestModule_CloneDeep(t *testing.T) {
	m := &Module{ID: "a", GraphPos: &Position{X: 1, Y: 2}, Data: map[string]any{"k": "v"}}
	c := m.Clone()
	require.NotSame(t, m.GraphPos, c.GraphPos)
	c.Data["k"] = "changed"
	assert.Equal(t, "v", m.Data["k"])
}

func TestNameSet(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, NameSet([]string{"b", "", "a", "b"}))
	assert.Empty(t, NameSet(nil))
}

func TestIDGenerators(t *testing.T) {
	t.Run("Random", func(t *testing.T) {
		a, b := RandomIDs.NewID(), RandomIDs.NewID()
		assert.Len(t, string(a), 16)
		assert.NotEqual(t, a, b)
	})

	t.Run("Sequential", func(t *testing.T) {
		gen := SequentialIDs("m")
		assert.Equal(t, ModuleID("m1"), gen.NewID())
		assert.Equal(t, ModuleID("m2"), gen.NewID())
	})
}

func TestChange_Coalesces(t *testing.T) {
	upd := func(id ModuleID) Change { return Change{Kind: ChangeUpdateModule, ModuleID: id} }

	assert.True(t, upd("a").Coalesces(upd("a")))
	assert.False(t, upd("a").Coalesces(upd("b")))
	assert.True(t, Change{Kind: ChangeTitle}.Coalesces(Change{Kind: ChangeTitle}))
	assert.False(t, Change{Kind: ChangeAddModule}.Coalesces(Change{Kind: ChangeAddModule}))
	assert.False(t, Change{Kind: ChangeTitle}.Coalesces(upd("a")))
}
