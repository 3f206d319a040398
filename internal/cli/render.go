package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/term"

	"github.com/cpsdqs/prechoster"
	"github.com/cpsdqs/prechoster/internal/presentation/tui"
	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/observability"
	"github.com/cpsdqs/prechoster/pkg/value"
)

// RenderOptions controls how a pass is run and printed.
type RenderOptions struct {
	Target domain.ModuleID
	Mode   prechoster.Mode

	// Preview renders markdown output for the terminal with glamour.
	Preview  bool
	Style    string
	WordWrap int
}

// NewEditor creates an editor over state that logs through logger.
func NewEditor(state domain.DocumentState, logger *slog.Logger) *prechoster.Editor {
	return prechoster.New(
		prechoster.WithState(state),
		prechoster.WithLogger(logger),
		prechoster.WithHooks(observability.LoggingHooks(logger)),
	)
}

// Render evaluates the editor's document and writes the result to w.
// A result superseded by a newer render is not written.
func Render(ctx context.Context, w io.Writer, ed *prechoster.Editor, opts RenderOptions) error {
	target := opts.Target
	if target == "" {
		target = domain.OutputID
	}

	res, ok := ed.Preview(ctx, prechoster.Request{Target: target, Mode: opts.Mode})
	if !ok {
		return nil
	}
	if err := res.Err(); err != nil {
		return err
	}
	return WriteResult(w, res, opts)
}

// WriteResult prints a successful result in the requested mode.
func WriteResult(w io.Writer, res *prechoster.Result, opts RenderOptions) error {
	if opts.Mode == prechoster.ModeValues || (res.Output == "" && len(res.Values) > 0 && opts.Target != "" && opts.Target != domain.OutputID) {
		return writeValues(w, res.Values)
	}

	out := res.Output
	if opts.Preview && opts.Mode == prechoster.ModeMarkdown {
		render, err := tui.NewRenderer(opts.Style, opts.WordWrap)
		if err != nil {
			return err
		}
		if out, err = render(out); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(out, "\n"))
	return err
}

func writeValues(w io.Writer, values []value.Value) error {
	for i, v := range values {
		if _, err := fmt.Fprintf(w, "--- %d: %s\n", i+1, v.TypeID()); err != nil {
			return err
		}
		var body string
		switch t := v.(type) {
		case *value.Blob:
			body = t.URL
		default:
			if s, ok := value.TextContents(v); ok {
				body = s
			} else if s, ok := value.Markdown(v); ok {
				body = s
			} else {
				body = fmt.Sprintf("(%s value)", v.Kind())
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(body, "\n")); err != nil {
			return err
		}
	}
	return nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
