package schema

import "github.com/cpsdqs/prechoster/pkg/domain"

// Reassign gives every module a fresh id from gen and rewrites edges to
// match. Edges to the output, or to modules not in the document, are kept
// as they are. It returns the new state and the old-to-new id mapping.
func Reassign(state domain.DocumentState, gen domain.IDGenerator) (domain.DocumentState, map[domain.ModuleID]domain.ModuleID) {
	mapping := make(map[domain.ModuleID]domain.ModuleID, len(state.Modules))
	for _, m := range state.Modules {
		mapping[m.ID] = gen.NewID()
	}
	rename := func(id domain.ModuleID) domain.ModuleID {
		if next, ok := mapping[id]; ok {
			return next
		}
		return id
	}

	modules := make([]*domain.Module, len(state.Modules))
	for i, m := range state.Modules {
		next := m.Clone()
		next.ID = mapping[m.ID]
		for j, target := range next.Sends {
			next.Sends[j] = rename(target)
		}
		if next.NamedSends != nil {
			named := make(map[domain.ModuleID][]string, len(next.NamedSends))
			for target, names := range next.NamedSends {
				named[rename(target)] = names
			}
			next.NamedSends = named
		}
		modules[i] = next
	}
	return state.WithModules(modules), mapping
}
