package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPassStart   EventType = "pass_start"
	EventPassDone    EventType = "pass_done"
	EventModuleStart EventType = "module_start"
	EventModuleDone  EventType = "module_done"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	PassID    uint64    `json:"pass_id"`
}

// PassEvent reports the start or end of one evaluation pass.
type PassEvent struct {
	EventBase
	Target   ModuleID      `json:"target"`
	Steps    int           `json:"steps,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// ModuleEvent reports a module transform being invoked or finishing.
type ModuleEvent struct {
	EventBase
	ModuleID ModuleID      `json:"module_id"`
	Plugin   string        `json:"plugin"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// EvalHooks defines callbacks for evaluation observability.
// Module callbacks may be invoked concurrently from several goroutines.
type EvalHooks struct {
	OnPassStart   func(context.Context, *PassEvent)
	OnPassDone    func(context.Context, *PassEvent)
	OnModuleStart func(context.Context, *ModuleEvent)
	OnModuleDone  func(context.Context, *ModuleEvent)
}

// Merge returns hooks that call h first and then other.
func (h EvalHooks) Merge(other EvalHooks) EvalHooks {
	return EvalHooks{
		OnPassStart:   chainPass(h.OnPassStart, other.OnPassStart),
		OnPassDone:    chainPass(h.OnPassDone, other.OnPassDone),
		OnModuleStart: chainModule(h.OnModuleStart, other.OnModuleStart),
		OnModuleDone:  chainModule(h.OnModuleDone, other.OnModuleDone),
	}
}

func chainPass(a, b func(context.Context, *PassEvent)) func(context.Context, *PassEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *PassEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainModule(a, b func(context.Context, *ModuleEvent)) func(context.Context, *ModuleEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *ModuleEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
