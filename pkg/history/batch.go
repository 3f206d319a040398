package history

import "github.com/cpsdqs/prechoster/pkg/domain"

// Batch groups pushes into a single undo step.
type Batch struct {
	store *Store
	ended bool
}

// BeginBatch starts a batch. Batches nest; only ending the outermost one
// collapses the entries.
func (s *Store) BeginBatch() *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchDepth == 0 {
		s.batchStart = s.cursor
	}
	s.batchDepth++
	return &Batch{store: s}
}

// End closes the batch. Calling End more than once has no further effect.
// The log may exceed its limit while a batch is open; End trims it.
func (b *Batch) End() {
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ended {
		return
	}
	b.ended = true
	s.batchDepth--
	if s.batchDepth > 0 {
		return
	}

	start := s.batchStart
	if s.cursor <= start {
		return
	}
	first := s.entries[start+1]
	last := s.entries[s.cursor]
	s.entries = append(s.entries[:start+1], Entry{
		State:  last.State,
		Change: domain.Change{Kind: domain.ChangeBatch},
		Time:   first.Time,
	})
	s.cursor = start + 1
	s.evict()
}
