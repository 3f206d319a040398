package runtime

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/value"
)

// Mode selects how the output sink's inputs are assembled.
type Mode int

const (
	// ModeMarkdown joins the markdown form of every output input.
	ModeMarkdown Mode = iota
	// ModeHTML renders the assembled markdown to HTML.
	ModeHTML
	// ModeValues returns the raw values without assembling them.
	ModeValues
)

func (m Mode) String() string {
	switch m {
	case ModeMarkdown:
		return "markdown"
	case ModeHTML:
		return "html"
	case ModeValues:
		return "values"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "markdown", "md":
		return ModeMarkdown, nil
	case "html":
		return ModeHTML, nil
	case "values", "raw":
		return ModeValues, nil
	}
	return ModeMarkdown, fmt.Errorf("unknown render mode %q", s)
}

// Request describes one evaluation pass.
type Request struct {
	// Target is a module id or domain.OutputID.
	Target domain.ModuleID
	Mode   Mode
}

// Status tags a Result.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Result is the outcome of a pass. Successful results own the values they
// expose and must be dropped once they are no longer displayed.
type Result struct {
	Status Status
	PassID uint64
	Steps  int

	// Output is the assembled markdown or HTML. For single targets it holds
	// the target's markdown form when it has one.
	Output string

	// Values are the target's value, or the output sink's inputs in order.
	Values []value.Value

	// Nodes holds every module value computed during the pass.
	Nodes map[domain.ModuleID]value.Value

	// UserData holds plugin diagnostics per module. Modules that wrote
	// nothing are absent.
	UserData map[domain.ModuleID]map[string]any

	Error *EvalError

	dropOnce sync.Once
}

// OK reports whether the pass succeeded.
func (r *Result) OK() bool {
	return r.Status == StatusOK
}

// Err returns the pass failure as an error, or nil.
func (r *Result) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// Drop releases every value held by the result. It is safe to call more
// than once and on failed results, which hold no values.
func (r *Result) Drop() {
	if r == nil {
		return
	}
	r.dropOnce.Do(func() {
		for _, v := range r.Nodes {
			v.Release()
		}
	})
}
