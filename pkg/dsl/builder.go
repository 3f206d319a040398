package dsl

import (
	"errors"
	"fmt"

	"github.com/cpsdqs/prechoster/pkg/document"
	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/schema"
)

// Builder manages the document construction. Modules keep the order in
// which they were first added.
type Builder struct {
	title       string
	titleInPost bool
	order       []domain.ModuleID
	modules     map[domain.ModuleID]*ModuleBuilder
}

// New creates a new document builder.
func New() *Builder {
	return &Builder{
		modules: make(map[domain.ModuleID]*ModuleBuilder),
	}
}

// Title sets the document title.
func (b *Builder) Title(title string) *Builder {
	b.title = title
	return b
}

// TitleInPost renders the title into the post.
func (b *Builder) TitleInPost(inPost bool) *Builder {
	b.titleInPost = inPost
	return b
}

// Add creates a module of the given plugin kind.
// If the module already exists, it returns the existing builder.
func (b *Builder) Add(id domain.ModuleID, plugin string) *ModuleBuilder {
	if mb, ok := b.modules[id]; ok {
		return mb
	}
	mb := &ModuleBuilder{
		module: &domain.Module{
			ID:     id,
			Plugin: plugin,
			Data:   map[string]any{},
			Sends:  []domain.ModuleID{},
		},
	}
	b.modules[id] = mb
	b.order = append(b.order, id)
	return mb
}

// Text adds a markdown text module.
func (b *Builder) Text(id domain.ModuleID, contents string) *ModuleBuilder {
	return b.source(id, contents, "markdown")
}

// HTML adds an HTML text module.
func (b *Builder) HTML(id domain.ModuleID, contents string) *ModuleBuilder {
	return b.source(id, contents, "html")
}

// CSS adds a stylesheet text module.
func (b *Builder) CSS(id domain.ModuleID, contents string) *ModuleBuilder {
	return b.source(id, contents, "css")
}

func (b *Builder) source(id domain.ModuleID, contents, language string) *ModuleBuilder {
	return b.Add(id, "text").Set("contents", contents).Set("language", language)
}

// Build returns the document state. Edges must point at modules added to
// the builder or at the output.
func (b *Builder) Build() (domain.DocumentState, error) {
	modules := make([]*domain.Module, 0, len(b.order))
	var errs []error
	for _, id := range b.order {
		m := b.modules[id].Build()
		for _, target := range m.Sends {
			if err := b.checkTarget(id, target); err != nil {
				errs = append(errs, err)
			}
		}
		for target := range m.NamedSends {
			if target == domain.OutputID {
				errs = append(errs, fmt.Errorf("module %s: named input on output", id))
				continue
			}
			if err := b.checkTarget(id, target); err != nil {
				errs = append(errs, err)
			}
		}
		modules = append(modules, m)
	}

	state := domain.DocumentState{Title: b.title, TitleInPost: b.titleInPost, Modules: modules}
	if err := schema.Check(state); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return domain.DocumentState{}, fmt.Errorf("failed to build document: %w", errors.Join(errs...))
	}
	return state, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() domain.DocumentState {
	state, err := b.Build()
	if err != nil {
		panic(err)
	}
	return state
}

// Document builds the state and opens it as an editable document.
func (b *Builder) Document(opts ...document.Option) (*document.Document, error) {
	state, err := b.Build()
	if err != nil {
		return nil, err
	}
	return document.New(append([]document.Option{document.WithState(state)}, opts...)...), nil
}

func (b *Builder) checkTarget(from, to domain.ModuleID) error {
	if to == domain.OutputID {
		return nil
	}
	if _, ok := b.modules[to]; !ok {
		return fmt.Errorf("module %s: sends to unknown module %s", from, to)
	}
	return nil
}
