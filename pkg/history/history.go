package history

import (
	"slices"
	"sync"
	"time"

	"github.com/cpsdqs/prechoster/pkg/domain"
)

const (
	// DefaultLimit is the number of entries kept before the oldest is evicted.
	DefaultLimit = 100
	// DefaultCoalesceWindow bounds how far apart two coalescable edits may be.
	DefaultCoalesceWindow = 5 * time.Second
)

// Entry is one snapshot in the log.
type Entry struct {
	State  domain.DocumentState
	Change domain.Change
	Time   time.Time
}

// Store is the history log. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	cursor  int

	limit  int
	window time.Duration
	now    func() time.Time

	batchDepth int
	batchStart int

	subs   map[int]func()
	nextID int
}

// Option configures the Store.
type Option func(*Store)

// WithClock replaces the wall clock used to timestamp entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLimit sets the maximum number of entries. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithCoalesceWindow sets the coalescing window. Zero disables coalescing.
func WithCoalesceWindow(d time.Duration) Option {
	return func(s *Store) {
		s.window = d
	}
}

// New creates a store whose first entry is initial.
func New(initial domain.DocumentState, opts ...Option) *Store {
	s := &Store{
		limit:  DefaultLimit,
		window: DefaultCoalesceWindow,
		now:    time.Now,
		subs:   make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.entries = []Entry{{State: initial, Change: domain.Change{Kind: domain.ChangeInit}, Time: s.now()}}
	return s
}

// Current returns the snapshot under the cursor.
func (s *Store) Current() domain.DocumentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[s.cursor].State
}

// Head returns the entry under the cursor.
func (s *Store) Head() Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[s.cursor]
}

// Entries returns a copy of the log and the cursor position.
func (s *Store) Entries() ([]Entry, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries), s.cursor
}

// Len returns the number of entries, including those ahead of the cursor.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Push records state as the result of change. Entries after the cursor are
// discarded.
func (s *Store) Push(state domain.DocumentState, change domain.Change) {
	s.mu.Lock()
	now := s.now()
	s.entries = s.entries[:s.cursor+1]

	head := &s.entries[s.cursor]
	if s.canCoalesce(head, change, now) {
		// The entry keeps its original timestamp, so a burst of edits is
		// bounded by the window measured from its first edit.
		head.State = state
		head.Change = change
	} else {
		s.entries = append(s.entries, Entry{State: state, Change: change, Time: now})
		s.cursor++
		s.evict()
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Store) canCoalesce(head *Entry, change domain.Change, now time.Time) bool {
	if s.window <= 0 {
		return false
	}
	if s.batchDepth > 0 && s.cursor <= s.batchStart {
		return false
	}
	if !change.Coalesces(head.Change) {
		return false
	}
	return now.Sub(head.Time) < s.window
}

func (s *Store) evict() {
	over := len(s.entries) - s.limit
	if s.batchDepth > 0 {
		// The entry a batch started from must survive until End.
		over = min(over, s.batchStart)
	}
	if over <= 0 {
		return
	}
	s.entries = slices.Delete(s.entries, 0, over)
	s.cursor -= over
	if s.batchDepth > 0 {
		s.batchStart -= over
	}
}

// CanUndo reports whether an entry exists before the cursor.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor > 0
}

// CanRedo reports whether an entry exists after the cursor.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.entries)-1
}

// Undo moves the cursor back one entry. It returns false when there is
// nothing to undo.
func (s *Store) Undo() bool {
	s.mu.Lock()
	if s.cursor == 0 {
		s.mu.Unlock()
		return false
	}
	s.cursor--
	s.mu.Unlock()
	s.notify()
	return true
}

// Redo moves the cursor forward one entry. It returns false when there is
// nothing to redo.
func (s *Store) Redo() bool {
	s.mu.Lock()
	if s.cursor >= len(s.entries)-1 {
		s.mu.Unlock()
		return false
	}
	s.cursor++
	s.mu.Unlock()
	s.notify()
	return true
}

// Subscribe registers fn to be called after every change of the current
// snapshot. The returned function removes the subscription.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
