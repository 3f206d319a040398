// Package document is the editable document: graph mutations recorded in
// an undo history.
package document

import (
	"context"
	"fmt"
	"slices"

	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/history"
	"github.com/cpsdqs/prechoster/pkg/plugin"
)

// Document is a document under edit. Every mutation pushes exactly one
// history entry, or joins the open batch. Reads are safe from any
// goroutine; callers serialize mutations.
type Document struct {
	history  *history.Store
	ids      domain.IDGenerator
	registry *plugin.Registry
}

// Option configures a Document.
type Option func(*config)

type config struct {
	initial     domain.DocumentState
	ids         domain.IDGenerator
	registry    *plugin.Registry
	historyOpts []history.Option
}

// WithState sets the initial snapshot.
func WithState(state domain.DocumentState) Option {
	return func(c *config) {
		c.initial = state
	}
}

// WithIDGenerator replaces the random module id generator.
func WithIDGenerator(ids domain.IDGenerator) Option {
	return func(c *config) {
		c.ids = ids
	}
}

// WithRegistry sets the registry NewModule reads default configs from.
func WithRegistry(r *plugin.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithHistory passes options to the underlying history store.
func WithHistory(opts ...history.Option) Option {
	return func(c *config) {
		c.historyOpts = append(c.historyOpts, opts...)
	}
}

// New creates a document.
func New(opts ...Option) *Document {
	c := config{
		initial: domain.NewDocumentState(),
		ids:     domain.RandomIDs,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &Document{
		history:  history.New(c.initial, c.historyOpts...),
		ids:      c.ids,
		registry: c.registry,
	}
}

// State returns the current snapshot.
func (d *Document) State() domain.DocumentState {
	return d.history.Current()
}

// Title returns the current title.
func (d *Document) Title() string {
	return d.State().Title
}

// TitleInPost reports whether the title is rendered into the post.
func (d *Document) TitleInPost() bool {
	return d.State().TitleInPost
}

// Modules returns the current modules in document order.
func (d *Document) Modules() []*domain.Module {
	return slices.Clone(d.State().Modules)
}

// Module looks up a module in the current snapshot.
func (d *Document) Module(id domain.ModuleID) (*domain.Module, bool) {
	return d.State().Module(id)
}

// History exposes the underlying history store.
func (d *Document) History() *history.Store {
	return d.history
}

// NewModule creates a module of kind with a fresh id and the plugin's
// default config. The module is not inserted.
func (d *Document) NewModule(ctx context.Context, kind string) (*domain.Module, error) {
	if d.registry == nil {
		return nil, fmt.Errorf("new module %s: no plugin registry", kind)
	}
	c, err := d.registry.Load(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("new module: %w", err)
	}
	data, err := c.DefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("default config for %s: %w", kind, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return &domain.Module{
		ID:     d.ids.NewID(),
		Plugin: kind,
		Data:   data,
		Sends:  []domain.ModuleID{},
	}, nil
}

// AddModule creates a module of kind and appends it.
func (d *Document) AddModule(ctx context.Context, kind string) (*domain.Module, error) {
	m, err := d.NewModule(ctx, kind)
	if err != nil {
		return nil, err
	}
	d.InsertModule(m)
	return m, nil
}

// InsertModule replaces the module with the same id, or appends m.
func (d *Document) InsertModule(m *domain.Module) {
	state := d.State()
	modules := slices.Clone(state.Modules)
	change := domain.Change{Kind: domain.ChangeAddModule, ModuleID: m.ID}

	if i := state.Index(m.ID); i >= 0 {
		modules[i] = m
		change.Kind = domain.ChangeUpdateModule
	} else {
		modules = append(modules, m)
	}
	d.history.Push(state.WithModules(modules), change)
}

// UpdateModule replaces a module with fn's result. fn receives the shared
// record and must derive a new one from it through the With* helpers.
func (d *Document) UpdateModule(id domain.ModuleID, fn func(*domain.Module) *domain.Module) error {
	m, ok := d.Module(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrModuleNotFound, id)
	}
	next := fn(m)
	if next.ID != id {
		return fmt.Errorf("update module %s: id changed to %s", id, next.ID)
	}
	d.InsertModule(next)
	return nil
}

// SetModuleData replaces a module's configuration.
func (d *Document) SetModuleData(id domain.ModuleID, data map[string]any) error {
	return d.UpdateModule(id, func(m *domain.Module) *domain.Module { return m.WithData(data) })
}

// RemoveModule removes a module and strips every edge pointing at it.
// Modules that referenced it are replaced by clones; all others are shared
// with the previous snapshot.
func (d *Document) RemoveModule(id domain.ModuleID) error {
	state := d.State()
	if state.Index(id) < 0 {
		return fmt.Errorf("%w: %s", domain.ErrModuleNotFound, id)
	}

	modules := make([]*domain.Module, 0, len(state.Modules)-1)
	for _, m := range state.Modules {
		switch {
		case m.ID == id:
			continue
		case m.References(id):
			modules = append(modules, m.WithoutSend(id))
		default:
			modules = append(modules, m)
		}
	}
	d.history.Push(state.WithModules(modules), domain.Change{Kind: domain.ChangeRemoveModule, ModuleID: id})
	return nil
}

// MoveModule moves a module to index, clamped to the module list.
func (d *Document) MoveModule(id domain.ModuleID, index int) error {
	state := d.State()
	from := state.Index(id)
	if from < 0 {
		return fmt.Errorf("%w: %s", domain.ErrModuleNotFound, id)
	}
	index = max(0, min(index, len(state.Modules)-1))
	if index == from {
		return nil
	}

	modules := slices.Delete(slices.Clone(state.Modules), from, from+1)
	modules = slices.Insert(modules, index, state.Modules[from])
	d.history.Push(state.WithModules(modules), domain.Change{Kind: domain.ChangeMoveModule, ModuleID: id})
	return nil
}

// Connect adds a positional edge from one module to another (or the output).
func (d *Document) Connect(from, to domain.ModuleID) error {
	if err := d.checkTarget(to); err != nil {
		return err
	}
	return d.UpdateModule(from, func(m *domain.Module) *domain.Module { return m.WithSend(to) })
}

// ConnectNamed adds a named edge from one module into a named input of another.
func (d *Document) ConnectNamed(from, to domain.ModuleID, name string) error {
	if to == domain.OutputID {
		return fmt.Errorf("output does not accept named inputs")
	}
	if err := d.checkTarget(to); err != nil {
		return err
	}
	return d.UpdateModule(from, func(m *domain.Module) *domain.Module { return m.WithNamedSend(to, name) })
}

// Disconnect removes every edge from one module to another.
func (d *Document) Disconnect(from, to domain.ModuleID) error {
	return d.UpdateModule(from, func(m *domain.Module) *domain.Module { return m.WithoutSend(to) })
}

func (d *Document) checkTarget(id domain.ModuleID) error {
	if id == domain.OutputID {
		return nil
	}
	if _, ok := d.Module(id); !ok {
		return fmt.Errorf("%w: %s", domain.ErrModuleNotFound, id)
	}
	return nil
}

// SetTitle sets the document title.
func (d *Document) SetTitle(title string) {
	state := d.State()
	state.Title = title
	d.history.Push(state, domain.Change{Kind: domain.ChangeTitle})
}

// SetTitleInPost sets whether the title is rendered into the post.
func (d *Document) SetTitleInPost(inPost bool) {
	state := d.State()
	state.TitleInPost = inPost
	d.history.Push(state, domain.Change{Kind: domain.ChangeTitleInPost})
}

// Replace swaps in a whole new snapshot, e.g. after loading from a store.
func (d *Document) Replace(state domain.DocumentState) {
	d.history.Push(state, domain.Change{Kind: domain.ChangeReplace})
}

// Undo reverts the last entry.
func (d *Document) Undo() bool { return d.history.Undo() }

// Redo reapplies the next entry.
func (d *Document) Redo() bool { return d.history.Redo() }

// CanUndo reports whether Undo would change the document.
func (d *Document) CanUndo() bool { return d.history.CanUndo() }

// CanRedo reports whether Redo would change the document.
func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// BeginBatch groups the following mutations into one undo step.
func (d *Document) BeginBatch() *history.Batch { return d.history.BeginBatch() }

// Subscribe registers fn to run after every change of the current snapshot.
func (d *Document) Subscribe(fn func()) (unsubscribe func()) {
	return d.history.Subscribe(fn)
}
