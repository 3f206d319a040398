package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cpsdqs/prechoster/internal/logging"
	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/plugin"
)

// DefaultStepLimit is the number of resolve attempts allowed per pass.
const DefaultStepLimit = 1024

// Engine evaluates document snapshots. It holds no per-pass state and is
// safe for concurrent use.
type Engine struct {
	registry  *plugin.Registry
	logger    *slog.Logger
	hooks     domain.EvalHooks
	stepLimit int
	now       func() time.Time
	passes    atomic.Uint64
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers lifecycle callbacks. Repeated use merges the hooks.
func WithHooks(hooks domain.EvalHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithStepLimit overrides DefaultStepLimit. Values below 1 are ignored.
func WithStepLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.stepLimit = n
		}
	}
}

// WithClock replaces the clock used for event timestamps and durations.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine resolving plugin kinds through registry.
func NewEngine(registry *plugin.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry:  registry,
		logger:    logging.NewNop(),
		stepLimit: DefaultStepLimit,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eval runs one pass over state. It never returns a nil Result and never
// panics on plugin failures: every error is reported through Result.Error.
func (e *Engine) Eval(ctx context.Context, state domain.DocumentState, req Request) *Result {
	passID := e.passes.Add(1)
	start := e.now()
	logger := e.logger.With("pass", passID, "target", req.Target)
	logger.Debug("pass started", "mode", req.Mode.String(), "modules", len(state.Modules))

	if e.hooks.OnPassStart != nil {
		e.hooks.OnPassStart(ctx, &domain.PassEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventPassStart, PassID: passID},
			Target:    req.Target,
		})
	}

	res, steps := e.run(ctx, passID, state, req)
	res.PassID = passID
	res.Steps = steps

	duration := e.now().Sub(start)
	if res.Error != nil {
		logger.Debug("pass failed", "steps", steps, "duration", duration, "error", res.Error)
	} else {
		logger.Debug("pass finished", "steps", steps, "duration", duration, "nodes", len(res.Nodes))
	}

	if e.hooks.OnPassDone != nil {
		e.hooks.OnPassDone(ctx, &domain.PassEvent{
			EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventPassDone, PassID: passID},
			Target:    req.Target,
			Steps:     steps,
			Duration:  duration,
			Err:       res.Err(),
		})
	}
	return res
}

func (e *Engine) run(ctx context.Context, passID uint64, state domain.DocumentState, req Request) (*Result, int) {
	caps, err := e.resolvePlugins(ctx, state)
	if err != nil {
		return failed(err), 0
	}

	p := newPass(ctx, e, passID, state, caps)
	defer p.cancel(nil)

	var res *Result
	if req.Target == domain.OutputID {
		res, err = p.evalOutput(req.Mode)
	} else {
		res, err = p.evalTarget(req.Target, req.Mode)
	}
	if err != nil {
		p.abort(err)
		return failed(err), p.stepCount()
	}
	return res, p.stepCount()
}

// resolvePlugins loads every kind used by the document. Unknown kinds are
// reported in document order before any loader runs.
func (e *Engine) resolvePlugins(ctx context.Context, state domain.DocumentState) (map[string]plugin.Capability, error) {
	kinds := state.PluginKinds()
	for _, kind := range kinds {
		if !e.registry.Has(kind) {
			return nil, &PluginResolutionError{Kind: kind, Err: plugin.ErrUnknownKind}
		}
	}
	caps, err := e.registry.ResolveAll(ctx, kinds)
	if err != nil {
		resErr := &PluginResolutionError{Err: err}
		var loadErr *plugin.LoadError
		if errors.As(err, &loadErr) {
			resErr.Kind = loadErr.Kind
			resErr.Err = loadErr.Err
		}
		return nil, resErr
	}
	return caps, nil
}

func failed(err error) *Result {
	return &Result{Status: StatusError, Error: newEvalError(err)}
}
