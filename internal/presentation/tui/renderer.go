package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the column width previews wrap at.
const DefaultWordWrap = 80

// NewRenderer returns a function that renders markdown for the terminal
// using glamour. Style "auto" detects a light or dark background; any other
// value names a glamour style such as "dark", "light" or "notty".
func NewRenderer(style string, wordWrap int) (func(string) (string, error), error) {
	if wordWrap <= 0 {
		wordWrap = DefaultWordWrap
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}

	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wordWrap))
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}
