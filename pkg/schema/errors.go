package schema

import (
	"errors"
	"fmt"
)

// ErrUnsupportedVersion is returned for files newer than this build understands.
var ErrUnsupportedVersion = errors.New("unsupported document version")

// ValidationError represents a single structural problem in a document.
type ValidationError struct {
	Module string // Module id, or empty for document-level problems
	Reason string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	if e.Module == "" {
		return e.Reason
	}
	return fmt.Sprintf("module %q: %s", e.Module, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
