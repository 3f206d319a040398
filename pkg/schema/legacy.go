package schema

import "github.com/cpsdqs/prechoster/pkg/domain"

// fileV1 is the first document format. It used camelCase keys and had no
// named sends.
type fileV1 struct {
	Title       string     `json:"title" yaml:"title"`
	TitleInPost bool       `json:"titleInPost" yaml:"titleInPost"`
	Modules     []moduleV1 `json:"modules" yaml:"modules"`
}

type moduleV1 struct {
	ID       string           `json:"id" yaml:"id"`
	Plugin   string           `json:"plugin" yaml:"plugin"`
	Data     map[string]any   `json:"data" yaml:"data"`
	Sends    []string         `json:"sends" yaml:"sends"`
	GraphPos *domain.Position `json:"graphPos,omitempty" yaml:"graphPos,omitempty"`
	Title    string           `json:"title,omitempty" yaml:"title,omitempty"`
}

func (f fileV1) migrate() domain.DocumentState {
	modules := make([]*domain.Module, len(f.Modules))
	for i, m := range f.Modules {
		sends := make([]domain.ModuleID, len(m.Sends))
		for j, s := range m.Sends {
			sends[j] = domain.ModuleID(s)
		}
		modules[i] = &domain.Module{
			ID:       domain.ModuleID(m.ID),
			Plugin:   m.Plugin,
			Data:     m.Data,
			Sends:    sends,
			GraphPos: m.GraphPos,
			Title:    m.Title,
		}
	}
	return domain.DocumentState{Title: f.Title, TitleInPost: f.TitleInPost, Modules: modules}
}
