package history_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/history"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func titled(title string) domain.DocumentState {
	return domain.DocumentState{Title: title}
}

func update(id domain.ModuleID) domain.Change {
	return domain.Change{Kind: domain.ChangeUpdateModule, ModuleID: id}
}

func TestStore_Coalescing(t *testing.T) {
	t.Run("Same Module Within Window", func(t *testing.T) {
		clock := newClock()
		s := history.New(titled("s0"), history.WithClock(clock.Now))

		s.Push(titled("s1"), update("a"))
		clock.Advance(time.Second)
		s.Push(titled("s2"), update("a"))

		assert.Equal(t, 2, s.Len())
		assert.Equal(t, "s2", s.Current().Title)

		require.True(t, s.Undo())
		assert.Equal(t, "s0", s.Current().Title)
	})

	t.Run("Different Modules", func(t *testing.T) {
		clock := newClock()
		s := history.New(titled("s0"), history.WithClock(clock.Now))

		s.Push(titled("s1"), update("a"))
		clock.Advance(time.Second)
		s.Push(titled("s2"), update("b"))

		assert.Equal(t, 3, s.Len())
		require.True(t, s.Undo())
		assert.Equal(t, "s1", s.Current().Title)
	})

	t.Run("Window Measured From First Edit", func(t *testing.T) {
		clock := newClock()
		s := history.New(titled("s0"), history.WithClock(clock.Now))

		s.Push(titled("s1"), update("a"))
		clock.Advance(3 * time.Second)
		s.Push(titled("s2"), update("a"))
		clock.Advance(3 * time.Second)
		s.Push(titled("s3"), update("a"))

		assert.Equal(t, 3, s.Len())
		entries, _ := s.Entries()
		assert.Equal(t, "s2", entries[1].State.Title)
	})

	t.Run("Title Edits", func(t *testing.T) {
		clock := newClock()
		s := history.New(titled(""), history.WithClock(clock.Now))
		for _, title := range []string{"h", "he", "hel"} {
			s.Push(titled(title), domain.Change{Kind: domain.ChangeTitle})
		}
		assert.Equal(t, 2, s.Len())
	})

	t.Run("Disabled", func(t *testing.T) {
		s := history.New(titled("s0"), history.WithCoalesceWindow(0))
		s.Push(titled("s1"), update("a"))
		s.Push(titled("s2"), update("a"))
		assert.Equal(t, 3, s.Len())
	})
}

func TestStore_UndoRedoLinearity(t *testing.T) {
	s := history.New(titled("s0"), history.WithCoalesceWindow(0))
	for _, title := range []string{"s1", "s2", "s3"} {
		s.Push(titled(title), domain.Change{Kind: domain.ChangeAddModule})
	}

	for range 3 {
		require.True(t, s.Undo())
	}
	assert.False(t, s.CanUndo())
	assert.False(t, s.Undo())
	assert.Equal(t, "s0", s.Current().Title)

	for range 3 {
		require.True(t, s.Redo())
	}
	assert.False(t, s.CanRedo())
	assert.False(t, s.Redo())
	assert.Equal(t, "s3", s.Current().Title)

	t.Run("Push Truncates Future", func(t *testing.T) {
		require.True(t, s.Undo())
		require.True(t, s.Undo())
		s.Push(titled("x"), domain.Change{Kind: domain.ChangeAddModule})

		assert.False(t, s.CanRedo())
		assert.Equal(t, 3, s.Len())
		require.True(t, s.Undo())
		assert.Equal(t, "s1", s.Current().Title)
	})
}

func TestStore_Limit(t *testing.T) {
	s := history.New(titled("0"), history.WithLimit(3), history.WithCoalesceWindow(0))
	for _, title := range []string{"1", "2", "3", "4"} {
		s.Push(titled(title), domain.Change{Kind: domain.ChangeAddModule})
	}

	entries, cursor := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, 2, cursor)
	assert.Equal(t, "2", entries[0].State.Title)
	assert.Equal(t, "4", s.Current().Title)
}

func TestStore_Batch(t *testing.T) {
	t.Run("Collapses Into One Entry", func(t *testing.T) {
		s := history.New(titled("s0"))
		b := s.BeginBatch()
		s.Push(titled("s1"), domain.Change{Kind: domain.ChangeAddModule})
		s.Push(titled("s2"), update("a"))
		s.Push(titled("s3"), domain.Change{Kind: domain.ChangeRemoveModule})
		b.End()

		assert.Equal(t, 2, s.Len())
		assert.Equal(t, domain.ChangeBatch, s.Head().Change.Kind)
		assert.Equal(t, "s3", s.Current().Title)

		require.True(t, s.Undo())
		assert.Equal(t, "s0", s.Current().Title)
	})

	t.Run("Does Not Coalesce Into Entry Before Batch", func(t *testing.T) {
		s := history.New(titled("s0"))
		s.Push(titled("s1"), update("a"))
		b := s.BeginBatch()
		s.Push(titled("s2"), update("a"))
		b.End()

		assert.Equal(t, 3, s.Len())
		require.True(t, s.Undo())
		assert.Equal(t, "s1", s.Current().Title)
	})

	t.Run("Nested And Idempotent End", func(t *testing.T) {
		s := history.New(titled("s0"))
		outer := s.BeginBatch()
		s.Push(titled("s1"), domain.Change{Kind: domain.ChangeAddModule})
		inner := s.BeginBatch()
		s.Push(titled("s2"), domain.Change{Kind: domain.ChangeAddModule})
		inner.End()
		inner.End()
		assert.Equal(t, 3, s.Len())

		outer.End()
		outer.End()
		assert.Equal(t, 2, s.Len())
	})

	t.Run("Keeps Starting Entry Past Limit", func(t *testing.T) {
		s := history.New(titled("s0"), history.WithLimit(3), history.WithCoalesceWindow(0))
		s.Push(titled("s1"), domain.Change{Kind: domain.ChangeTitle})
		s.Push(titled("before"), domain.Change{Kind: domain.ChangeTitle})

		b := s.BeginBatch()
		s.Push(titled("b1"), domain.Change{Kind: domain.ChangeAddModule})
		s.Push(titled("b2"), domain.Change{Kind: domain.ChangeAddModule})
		s.Push(titled("b3"), domain.Change{Kind: domain.ChangeAddModule})
		b.End()

		assert.LessOrEqual(t, s.Len(), 3)
		assert.Equal(t, "b3", s.Current().Title)
		assert.Equal(t, domain.ChangeBatch, s.Head().Change.Kind)

		require.True(t, s.Undo())
		assert.Equal(t, "before", s.Current().Title)
	})

	t.Run("Empty Batch", func(t *testing.T) {
		s := history.New(titled("s0"))
		s.BeginBatch().End()
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, domain.ChangeInit, s.Head().Change.Kind)
	})
}

func TestStore_Subscribe(t *testing.T) {
	s := history.New(titled("s0"), history.WithCoalesceWindow(0))
	calls := 0
	unsubscribe := s.Subscribe(func() { calls++ })

	s.Push(titled("s1"), domain.Change{Kind: domain.ChangeTitle})
	s.Undo()
	s.Undo()
	s.Redo()
	assert.Equal(t, 3, calls)

	unsubscribe()
	unsubscribe()
	s.Push(titled("s2"), domain.Change{Kind: domain.ChangeTitle})
	assert.Equal(t, 3, calls)
}
