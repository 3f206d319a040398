package plugins

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/value"
)

// KindMarkdownToHTML renders markdown inputs to HTML.
const KindMarkdownToHTML = "markdown-to-html"

// MarkdownConfig configures a markdown-to-html module.
type MarkdownConfig struct {
	// Unsafe keeps raw HTML embedded in the markdown.
	Unsafe bool `mapstructure:"unsafe"`
	GFM    bool `mapstructure:"gfm"`
}

// MarkdownToHTML converts its concatenated positional inputs with goldmark.
type MarkdownToHTML struct{}

var _ plugin.Capability = MarkdownToHTML{}

func (MarkdownToHTML) Kind() string             { return KindMarkdownToHTML }
func (MarkdownToHTML) AcceptsInputs() bool      { return true }
func (MarkdownToHTML) AcceptsNamedInputs() bool { return false }

func (MarkdownToHTML) DefaultConfig() (map[string]any, error) {
	return encodeConfig(MarkdownConfig{Unsafe: true, GFM: true})
}

func (MarkdownToHTML) Describe(config map[string]any) string {
	return "markdown to HTML"
}

func (MarkdownToHTML) Transform(_ context.Context, config map[string]any, inputs []value.Value, _ map[string]value.Value, opts *plugin.TransformOptions) (value.Value, error) {
	var cfg MarkdownConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		s, err := inputText(in, i)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}

	out, err := RenderMarkdown(strings.Join(parts, "\n\n"), cfg)
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.UserData != nil {
		opts.UserData["bytes"] = len(out)
	}
	return value.HTML{Contents: out}, nil
}

// RenderMarkdown converts markdown source to HTML.
func RenderMarkdown(src string, cfg MarkdownConfig) (string, error) {
	var extensions []goldmark.Extender
	if cfg.GFM {
		extensions = append(extensions, extension.GFM)
	}
	var rendererOpts []goldmark.Option
	if cfg.Unsafe {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	md := goldmark.New(append(rendererOpts, goldmark.WithExtensions(extensions...))...)

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
