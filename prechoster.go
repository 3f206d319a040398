package prechoster

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cpsdqs/prechoster/internal/logging"
	"github.com/cpsdqs/prechoster/internal/runtime"
	"github.com/cpsdqs/prechoster/pkg/adapters/memory"
	"github.com/cpsdqs/prechoster/pkg/document"
	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/plugins"
	"github.com/cpsdqs/prechoster/pkg/ports"
	"github.com/cpsdqs/prechoster/pkg/schema"
)

// Re-exported so callers of the facade do not need the internal runtime.
type (
	Request = runtime.Request
	Result  = runtime.Result
	Mode    = runtime.Mode
)

const (
	ModeMarkdown = runtime.ModeMarkdown
	ModeHTML     = runtime.ModeHTML
	ModeValues   = runtime.ModeValues
)

// ParseMode maps a mode name (markdown, html, values) to a Mode.
func ParseMode(s string) (Mode, error) { return runtime.ParseMode(s) }

// Editor is the high-level entry point for the library.
// It ties a document with undo history to a plugin registry and an
// evaluation engine.
type Editor struct {
	doc      *document.Document
	registry *plugin.Registry
	engine   *runtime.Engine
	blobs    ports.BlobStore
	logger   *slog.Logger

	hooks     domain.EvalHooks
	stepLimit int
	docOpts   []document.Option

	previewSeq atomic.Uint64
	previewMu  sync.Mutex
	shownSeq   uint64
	shown      *runtime.Result
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the structured logger shared by the registry and engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithHooks registers evaluation hooks, e.g. observability.LoggingHooks.
func WithHooks(hooks domain.EvalHooks) Option {
	return func(e *Editor) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithRegistry replaces the default registry of built-in plugins.
func WithRegistry(r *plugin.Registry) Option {
	return func(e *Editor) {
		e.registry = r
	}
}

// WithBlobStore sets where data-file modules place their blobs.
// Ignored when WithRegistry is used.
func WithBlobStore(blobs ports.BlobStore) Option {
	return func(e *Editor) {
		e.blobs = blobs
	}
}

// WithStepLimit bounds the number of module evaluations per pass.
func WithStepLimit(n int) Option {
	return func(e *Editor) {
		e.stepLimit = n
	}
}

// WithState sets the initial document.
func WithState(state domain.DocumentState) Option {
	return func(e *Editor) {
		e.docOpts = append(e.docOpts, document.WithState(state))
	}
}

// WithIDGenerator sets how new module ids are minted.
func WithIDGenerator(ids domain.IDGenerator) Option {
	return func(e *Editor) {
		e.docOpts = append(e.docOpts, document.WithIDGenerator(ids))
	}
}

// WithDocumentOptions forwards options to the underlying document.
func WithDocumentOptions(opts ...document.Option) Option {
	return func(e *Editor) {
		e.docOpts = append(e.docOpts, opts...)
	}
}

// New creates an Editor over an empty document unless WithState is given.
func New(opts ...Option) *Editor {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.registry == nil {
		if e.blobs == nil {
			e.blobs = memory.NewBlobStore()
		}
		e.registry = plugin.NewRegistry(plugin.WithLogger(e.logger))
		plugins.RegisterBuiltins(e.registry, e.blobs)
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithLogger(e.logger),
		runtime.WithHooks(e.hooks),
	}
	if e.stepLimit > 0 {
		engineOpts = append(engineOpts, runtime.WithStepLimit(e.stepLimit))
	}
	e.engine = runtime.NewEngine(e.registry, engineOpts...)

	docOpts := append([]document.Option{document.WithRegistry(e.registry)}, e.docOpts...)
	e.doc = document.New(docOpts...)
	return e
}

// Document returns the edited document.
func (e *Editor) Document() *document.Document { return e.doc }

// Registry returns the plugin registry.
func (e *Editor) Registry() *plugin.Registry { return e.registry }

// State returns the current document snapshot.
func (e *Editor) State() domain.DocumentState { return e.doc.State() }

// Eval runs one pass over the current snapshot. The caller owns the result
// and must Drop it.
func (e *Editor) Eval(ctx context.Context, req Request) *Result {
	return e.engine.Eval(ctx, e.doc.State(), req)
}

// Render evaluates the output sink in the given mode.
func (e *Editor) Render(ctx context.Context, mode Mode) *Result {
	return e.Eval(ctx, Request{Target: domain.OutputID, Mode: mode})
}

// Preview evaluates req and keeps the result as the one on display.
// Requests are numbered as they arrive; a result that completes after a
// newer one has been shown is dropped and Preview reports false. The
// previously shown result is dropped when replaced. Callers must not Drop
// results returned by Preview; Close releases the last one.
func (e *Editor) Preview(ctx context.Context, req Request) (*Result, bool) {
	seq := e.previewSeq.Add(1)
	res := e.engine.Eval(ctx, e.doc.State(), req)

	e.previewMu.Lock()
	defer e.previewMu.Unlock()

	if seq < e.shownSeq {
		e.logger.Debug("preview superseded", "request", seq, "shown", e.shownSeq)
		res.Drop()
		return nil, false
	}
	if e.shown != nil {
		e.shown.Drop()
	}
	e.shown, e.shownSeq = res, seq
	return res, true
}

// Shown returns the result currently on display, if any.
func (e *Editor) Shown() *Result {
	e.previewMu.Lock()
	defer e.previewMu.Unlock()
	return e.shown
}

// PrefersDebounce reports whether any plugin used by the document asks for
// debounced evaluation. Kinds that have not been loaded yet count as no.
func (e *Editor) PrefersDebounce() bool {
	return slices.ContainsFunc(e.doc.State().PluginKinds(), func(kind string) bool {
		return plugin.PrefersDebounce(e.registry.Peek(kind))
	})
}

// Paste inserts a copy of modules under fresh ids as one undo step. Edges
// among the pasted modules follow the new ids; edges to the output or to
// modules outside the paste are kept as they are. A nil ids uses
// domain.RandomIDs.
func (e *Editor) Paste(modules []*domain.Module, ids domain.IDGenerator) []domain.ModuleID {
	if ids == nil {
		ids = domain.RandomIDs
	}
	pasted, _ := schema.Reassign(domain.DocumentState{Modules: modules}, ids)

	batch := e.doc.BeginBatch()
	defer batch.End()

	out := make([]domain.ModuleID, 0, len(pasted.Modules))
	for _, m := range pasted.Modules {
		e.doc.InsertModule(m)
		out = append(out, m.ID)
	}
	return out
}

// Close drops the displayed preview.
func (e *Editor) Close() {
	e.previewMu.Lock()
	defer e.previewMu.Unlock()
	if e.shown != nil {
		e.shown.Drop()
		e.shown = nil
	}
}
