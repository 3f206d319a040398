package runtime

import (
	"errors"
	"fmt"

	"github.com/cpsdqs/prechoster/pkg/domain"
)

var (
	// ErrStepLimit aborts a pass that resolved more modules than allowed.
	// Cyclic graphs always end this way.
	ErrStepLimit = errors.New("evaluation step limit exceeded")

	// ErrMissingTarget is returned when the requested module is not in the document.
	ErrMissingTarget = errors.New("render target not found")

	// ErrNoValue is returned when a plugin reports success without a value.
	ErrNoValue = errors.New("plugin returned no value")
)

// ModuleError attributes a failure to the module whose transform raised it.
type ModuleError struct {
	ModuleID domain.ModuleID
	Plugin   string
	Err      error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("error in module %s: %v", e.ModuleID, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

// PluginResolutionError reports a plugin kind that could not be loaded.
type PluginResolutionError struct {
	Kind string
	Err  error
}

func (e *PluginResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve plugin %q: %v", e.Kind, e.Err)
}

func (e *PluginResolutionError) Unwrap() error {
	return e.Err
}

// MarkdownConversionError reports an output input that has no textual form.
// Index is 1-based among the output's direct inputs.
type MarkdownConversionError struct {
	Index  int
	TypeID string
}

func (e *MarkdownConversionError) Error() string {
	return fmt.Sprintf("cannot convert output input %d (%s) to markdown", e.Index, e.TypeID)
}

// EvalError is the failure carried by an error Result.
// ModuleID is empty when no single module is to blame.
type EvalError struct {
	ModuleID domain.ModuleID
	Err      error
}

func (e *EvalError) Error() string {
	var modErr *ModuleError
	if e.ModuleID == "" || errors.As(e.Err, &modErr) {
		return e.Err.Error()
	}
	return fmt.Sprintf("module %s: %v", e.ModuleID, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

func newEvalError(err error) *EvalError {
	ee := &EvalError{Err: err}
	var modErr *ModuleError
	if errors.As(err, &modErr) {
		ee.ModuleID = modErr.ModuleID
	}
	return ee
}
