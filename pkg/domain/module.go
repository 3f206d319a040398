package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
)

// ModuleID identifies a module within a document.
type ModuleID string

// OutputID is the virtual sink collecting the document's final result.
// It is never an entry in DocumentState.Modules.
const OutputID ModuleID = "output"

// Position is an optional manual layout position for graph editors.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Module is a node in the document graph.
//
// Modules are immutable once they are part of a DocumentState: every change
// goes through one of the With* helpers, which return a new record and leave
// the receiver untouched. Snapshots held by the history therefore never
// observe later edits.
type Module struct {
	ID     ModuleID       `json:"id" yaml:"id"`
	Plugin string         `json:"plugin" yaml:"plugin"`
	Data   map[string]any `json:"data" yaml:"data"`

	// Sends lists positional fan-out targets.
	Sends []ModuleID `json:"sends" yaml:"sends"`

	// NamedSends feeds this module's output into named input slots on each
	// target. Name lists are sorted and free of duplicates.
	NamedSends map[ModuleID][]string `json:"named_sends,omitempty" yaml:"named_sends,omitempty"`

	GraphPos *Position `json:"graph_pos,omitempty" yaml:"graph_pos,omitempty"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
}

// Clone returns a copy that shares no slices or maps with m.
// Data is copied one level deep.
func (m *Module) Clone() *Module {
	next := *m
	next.Data = maps.Clone(m.Data)
	next.Sends = slices.Clone(m.Sends)
	if m.NamedSends != nil {
		next.NamedSends = make(map[ModuleID][]string, len(m.NamedSends))
		for k, v := range m.NamedSends {
			next.NamedSends[k] = slices.Clone(v)
		}
	}
	if m.GraphPos != nil {
		pos := *m.GraphPos
		next.GraphPos = &pos
	}
	return &next
}

// WithData returns a copy of m with new configuration data.
func (m *Module) WithData(data map[string]any) *Module {
	next := m.Clone()
	next.Data = data
	return next
}

// WithTitle returns a copy of m with a new title.
func (m *Module) WithTitle(title string) *Module {
	next := m.Clone()
	next.Title = title
	return next
}

// WithPosition returns a copy of m placed at pos.
func (m *Module) WithPosition(pos Position) *Module {
	next := m.Clone()
	next.GraphPos = &pos
	return next
}

// WithSend returns a copy of m with target appended to its positional sends.
// Existing targets are not duplicated.
func (m *Module) WithSend(target ModuleID) *Module {
	next := m.Clone()
	if !slices.Contains(next.Sends, target) {
		next.Sends = append(next.Sends, target)
	}
	return next
}

// WithNamedSend returns a copy of m sending to target under name.
func (m *Module) WithNamedSend(target ModuleID, name string) *Module {
	next := m.Clone()
	if next.NamedSends == nil {
		next.NamedSends = make(map[ModuleID][]string)
	}
	next.NamedSends[target] = NameSet(append(next.NamedSends[target], name))
	return next
}

// WithoutSend returns a copy of m with every positional and named reference
// to target removed.
func (m *Module) WithoutSend(target ModuleID) *Module {
	next := m.Clone()
	next.Sends = slices.DeleteFunc(next.Sends, func(id ModuleID) bool { return id == target })
	delete(next.NamedSends, target)
	return next
}

// References reports whether m sends to target, positionally or by name.
func (m *Module) References(target ModuleID) bool {
	if slices.Contains(m.Sends, target) {
		return true
	}
	_, ok := m.NamedSends[target]
	return ok
}

// NameSet sorts names and removes duplicates and empty names.
func NameSet(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// IDGenerator produces globally unique module ids.
type IDGenerator interface {
	NewID() ModuleID
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() ModuleID

func (f IDGeneratorFunc) NewID() ModuleID { return f() }

// RandomIDs draws 8 bytes from crypto/rand and hex-encodes them.
var RandomIDs IDGenerator = IDGeneratorFunc(func() ModuleID {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("domain: crypto/rand failed: %v", err))
	}
	return ModuleID(hex.EncodeToString(buf[:]))
})

// SequentialIDs returns a generator yielding prefix1, prefix2, ...
// Not safe for concurrent use. Intended for tests and fixtures.
func SequentialIDs(prefix string) IDGenerator {
	n := 0
	return IDGeneratorFunc(func() ModuleID {
		n++
		return ModuleID(fmt.Sprintf("%s%d", prefix, n))
	})
}
