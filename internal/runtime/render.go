package runtime

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// PartSeparator joins the markdown of consecutive output inputs.
const PartSeparator = "\n\n"

var htmlRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

func assemble(mode Mode, parts []string) (string, error) {
	md := strings.Join(parts, PartSeparator)
	if mode != ModeHTML {
		return md, nil
	}
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
