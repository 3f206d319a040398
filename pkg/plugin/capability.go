package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/cpsdqs/prechoster/pkg/value"
)

var (
	// ErrUnloaded is returned by every operation of an Unloaded placeholder.
	ErrUnloaded = errors.New("plugin not loaded")
	// ErrUnknownKind is returned when no loader is registered for a kind.
	ErrUnknownKind = errors.New("unknown plugin kind")
)

// LoadError reports a kind that could not be resolved to a capability.
type LoadError struct {
	Kind string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load plugin %s: %v", e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// TransformOptions carries per-invocation side channels.
type TransformOptions struct {
	// UserData is a fresh map per module. Plugins may write diagnostics into
	// it for the editor; the evaluator surfaces it in the result.
	UserData map[string]any
}

// Capability is the behavior of one module kind.
type Capability interface {
	Kind() string
	AcceptsInputs() bool
	AcceptsNamedInputs() bool
	DefaultConfig() (map[string]any, error)
	Describe(config map[string]any) string
	Transform(ctx context.Context, config map[string]any, positional []value.Value, named map[string]value.Value, opts *TransformOptions) (value.Value, error)
}

// Debouncer is implemented by capabilities whose transforms are expensive
// enough that editors should delay re-evaluation while the user types.
type Debouncer interface {
	PrefersDebounce() bool
}

// PrefersDebounce reports whether c asks for debounced evaluation.
func PrefersDebounce(c Capability) bool {
	d, ok := c.(Debouncer)
	return ok && d.PrefersDebounce()
}

// Unloaded stands in for a capability that has not been resolved yet.
type Unloaded struct {
	kind string
}

// NewUnloaded returns a placeholder for kind.
func NewUnloaded(kind string) *Unloaded {
	return &Unloaded{kind: kind}
}

func (u *Unloaded) Kind() string             { return u.kind }
func (u *Unloaded) AcceptsInputs() bool      { return false }
func (u *Unloaded) AcceptsNamedInputs() bool { return false }

func (u *Unloaded) DefaultConfig() (map[string]any, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnloaded, u.kind)
}

func (u *Unloaded) Describe(map[string]any) string {
	return "(unloaded " + u.kind + ")"
}

func (u *Unloaded) Transform(context.Context, map[string]any, []value.Value, map[string]value.Value, *TransformOptions) (value.Value, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnloaded, u.kind)
}

// IsUnloaded reports whether c is a placeholder.
func IsUnloaded(c Capability) bool {
	_, ok := c.(*Unloaded)
	return ok
}
