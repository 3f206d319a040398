package domain

import "slices"

// DocumentState is one immutable snapshot of a document.
// Modules are shared between snapshots and must not be mutated in place.
type DocumentState struct {
	Title       string    `json:"title" yaml:"title"`
	TitleInPost bool      `json:"title_in_post" yaml:"title_in_post"`
	Modules     []*Module `json:"modules" yaml:"modules"`
}

// NewDocumentState returns an empty document.
func NewDocumentState() DocumentState {
	return DocumentState{Modules: []*Module{}}
}

// Index returns the position of the module with the given id, or -1.
func (s DocumentState) Index(id ModuleID) int {
	return slices.IndexFunc(s.Modules, func(m *Module) bool { return m.ID == id })
}

// Module looks up a module by id.
func (s DocumentState) Module(id ModuleID) (*Module, bool) {
	if i := s.Index(id); i >= 0 {
		return s.Modules[i], true
	}
	return nil, false
}

// WithModules returns a copy of s holding the given module list.
func (s DocumentState) WithModules(modules []*Module) DocumentState {
	s.Modules = modules
	return s
}

// PluginKinds returns the distinct plugin kinds used by the document in
// document order.
func (s DocumentState) PluginKinds() []string {
	var kinds []string
	for _, m := range s.Modules {
		if !slices.Contains(kinds, m.Plugin) {
			kinds = append(kinds, m.Plugin)
		}
	}
	return kinds
}

// PositionalInputs returns every module whose Sends contains id, in
// document order. Edges are not indexed; this is a linear scan.
func PositionalInputs(s DocumentState, id ModuleID) []ModuleID {
	var inputs []ModuleID
	for _, m := range s.Modules {
		if slices.Contains(m.Sends, id) {
			inputs = append(inputs, m.ID)
		}
	}
	return inputs
}

// NamedInput is one named edge into a module.
type NamedInput struct {
	Name   string
	Source ModuleID
}

// NamedInputs returns the named edges into id. When several modules claim
// the same name, the one appearing last in document order wins. The result
// is ordered by first appearance of each name.
func NamedInputs(s DocumentState, id ModuleID) []NamedInput {
	var inputs []NamedInput
	for _, m := range s.Modules {
		for _, name := range m.NamedSends[id] {
			if i := slices.IndexFunc(inputs, func(in NamedInput) bool { return in.Name == name }); i >= 0 {
				inputs[i].Source = m.ID
				continue
			}
			inputs = append(inputs, NamedInput{Name: name, Source: m.ID})
		}
	}
	return inputs
}

// Senders returns the modules holding any edge into id.
func Senders(s DocumentState, id ModuleID) []ModuleID {
	var out []ModuleID
	for _, m := range s.Modules {
		if m.References(id) {
			out = append(out, m.ID)
		}
	}
	return out
}
