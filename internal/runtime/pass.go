package runtime

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/value"
)

// task is the future for one module's value within a pass.
type task struct {
	id    domain.ModuleID
	done  chan struct{}
	value value.Value
	err   error
}

// pass holds the caches of one evaluation. Only the goroutine calling
// resolve registers tasks; transform goroutines write results under mu.
type pass struct {
	engine *Engine
	id     uint64
	state  domain.DocumentState
	caps   map[string]plugin.Capability

	ctx    context.Context
	cancel context.CancelCauseFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	steps    int
	tasks    map[domain.ModuleID]*task
	values   map[domain.ModuleID]value.Value
	userData map[domain.ModuleID]map[string]any
}

func newPass(ctx context.Context, e *Engine, id uint64, state domain.DocumentState, caps map[string]plugin.Capability) *pass {
	ctx, cancel := context.WithCancelCause(ctx)
	return &pass{
		engine:   e,
		id:       id,
		state:    state,
		caps:     caps,
		ctx:      ctx,
		cancel:   cancel,
		tasks:    make(map[domain.ModuleID]*task),
		values:   make(map[domain.ModuleID]value.Value),
		userData: make(map[domain.ModuleID]map[string]any),
	}
}

func (p *pass) stepCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.steps
}

// resolve returns the task for id, starting it if needed. Every call counts
// as a step, memoized or not. Inputs are resolved before the task for id is
// registered, so a cycle recurses until the step limit trips.
func (p *pass) resolve(id domain.ModuleID) (*task, error) {
	p.mu.Lock()
	p.steps++
	if p.steps > p.engine.stepLimit {
		p.mu.Unlock()
		return nil, ErrStepLimit
	}
	if t, ok := p.tasks[id]; ok {
		p.mu.Unlock()
		return t, nil
	}
	p.mu.Unlock()

	module, ok := p.state.Module(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTarget, id)
	}

	positional := domain.PositionalInputs(p.state, id)
	named := domain.NamedInputs(p.state, id)

	inputs := make([]*task, len(positional))
	for i, in := range positional {
		t, err := p.resolve(in)
		if err != nil {
			return nil, err
		}
		inputs[i] = t
	}
	namedInputs := make(map[string]*task, len(named))
	for _, in := range named {
		t, err := p.resolve(in.Source)
		if err != nil {
			return nil, err
		}
		namedInputs[in.Name] = t
	}

	t := &task{id: id, done: make(chan struct{})}
	p.mu.Lock()
	p.tasks[id] = t
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(t, module, inputs, namedInputs)
	return t, nil
}

func (p *pass) run(t *task, module *domain.Module, inputs []*task, named map[string]*task) {
	defer p.wg.Done()
	defer close(t.done)

	deps := make([]*task, 0, len(inputs)+len(named))
	deps = append(deps, inputs...)
	for _, in := range named {
		deps = append(deps, in)
	}
	if err := p.await(deps); err != nil {
		// Input failures keep their original attribution.
		t.err = err
		return
	}

	positional := make([]value.Value, len(inputs))
	for i, in := range inputs {
		positional[i] = in.value
	}
	namedValues := make(map[string]value.Value, len(named))
	for name, in := range named {
		namedValues[name] = in.value
	}

	v, userData, err := p.transform(module, positional, namedValues)
	if err != nil {
		t.err = &ModuleError{ModuleID: module.ID, Plugin: module.Plugin, Err: err}
		p.engine.logger.Warn("module failed", "pass", p.id, "module", module.ID, "plugin", module.Plugin, "error", err)
		p.cancel(t.err)
		return
	}

	t.value = v
	p.mu.Lock()
	p.values[module.ID] = v
	if len(userData) > 0 {
		p.userData[module.ID] = userData
	}
	p.mu.Unlock()
}

func (p *pass) transform(module *domain.Module, positional []value.Value, named map[string]value.Value) (value.Value, map[string]any, error) {
	capability, ok := p.caps[module.Plugin]
	if !ok {
		capability = plugin.NewUnloaded(module.Plugin)
	}
	hooks := p.engine.hooks

	event := &domain.ModuleEvent{
		EventBase: domain.EventBase{Timestamp: p.engine.now(), Type: domain.EventModuleStart, PassID: p.id},
		ModuleID:  module.ID,
		Plugin:    module.Plugin,
	}
	if hooks.OnModuleStart != nil {
		hooks.OnModuleStart(p.ctx, event)
	}

	opts := &plugin.TransformOptions{UserData: map[string]any{}}
	start := p.engine.now()
	v, err := p.invoke(capability, module, positional, named, opts)
	if err == nil && v == nil {
		err = ErrNoValue
	}

	if hooks.OnModuleDone != nil {
		hooks.OnModuleDone(p.ctx, &domain.ModuleEvent{
			EventBase: domain.EventBase{Timestamp: p.engine.now(), Type: domain.EventModuleDone, PassID: p.id},
			ModuleID:  module.ID,
			Plugin:    module.Plugin,
			Duration:  p.engine.now().Sub(start),
			Err:       err,
		})
	}
	if err != nil {
		if v != nil {
			v.Release()
		}
		return nil, nil, err
	}
	return v, opts.UserData, nil
}

// invoke calls the plugin and turns a panic into an error.
func (p *pass) invoke(capability plugin.Capability, module *domain.Module, positional []value.Value, named map[string]value.Value, opts *plugin.TransformOptions) (v value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("plugin panic: %v", r)
		}
	}()
	return capability.Transform(p.ctx, module.Data, positional, named, opts)
}

// await blocks until every task is done and returns the first failure.
func (p *pass) await(tasks []*task) error {
	if len(tasks) == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(p.ctx)
	for _, t := range tasks {
		g.Go(func() error {
			select {
			case <-t.done:
				return t.err
			case <-ctx.Done():
				return context.Cause(ctx)
			}
		})
	}
	return g.Wait()
}

// abort stops the pass, waits for running transforms and releases every
// value they produced. Failed passes expose nothing to release.
func (p *pass) abort(err error) {
	p.cancel(err)
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range p.values {
		v.Release()
	}
	clear(p.values)
}

func (p *pass) result(values []value.Value) *Result {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	return &Result{
		Status:   StatusOK,
		Values:   values,
		Nodes:    maps.Clone(p.values),
		UserData: maps.Clone(p.userData),
	}
}

func (p *pass) evalTarget(id domain.ModuleID, mode Mode) (*Result, error) {
	if _, ok := p.state.Module(id); !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTarget, id)
	}
	t, err := p.resolve(id)
	if err != nil {
		return nil, err
	}
	if err := p.await([]*task{t}); err != nil {
		return nil, err
	}

	res := p.result([]value.Value{t.value})
	if mode != ModeValues {
		if md, ok := value.Markdown(t.value); ok {
			out, err := assemble(mode, []string{md})
			if err != nil {
				p.abort(err)
				return nil, err
			}
			res.Output = out
		}
	}
	return res, nil
}

func (p *pass) evalOutput(mode Mode) (*Result, error) {
	senders := domain.PositionalInputs(p.state, domain.OutputID)
	tasks := make([]*task, len(senders))
	for i, id := range senders {
		t, err := p.resolve(id)
		if err != nil {
			return nil, err
		}
		tasks[i] = t
	}
	if err := p.await(tasks); err != nil {
		return nil, err
	}

	values := make([]value.Value, len(tasks))
	for i, t := range tasks {
		values[i] = t.value
	}
	if mode == ModeValues {
		return p.result(values), nil
	}

	var parts []string
	if p.state.TitleInPost && strings.TrimSpace(p.state.Title) != "" {
		parts = append(parts, "# "+strings.TrimSpace(p.state.Title))
	}
	for i, v := range values {
		md, ok := value.Markdown(v)
		if !ok {
			return nil, &MarkdownConversionError{Index: i + 1, TypeID: v.TypeID()}
		}
		parts = append(parts, md)
	}
	out, err := assemble(mode, parts)
	if err != nil {
		return nil, err
	}

	res := p.result(values)
	res.Output = out
	return res, nil
}
