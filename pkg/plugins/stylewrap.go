package plugins

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/value"
)

// KindStyleWrap wraps HTML in an element carrying inline styles.
const KindStyleWrap = "style-wrap"

// StyleInput is the named input holding the CSS declarations.
const StyleInput = "style"

// StyleWrapConfig configures a style-wrap module.
type StyleWrapConfig struct {
	Tag string `mapstructure:"tag" validate:"omitempty,oneof=div span section"`
}

// StyleWrap places its positional inputs inside one element whose style
// attribute is the named "style" input.
type StyleWrap struct{}

var (
	_ plugin.Capability = StyleWrap{}
	_ plugin.Debouncer  = StyleWrap{}
)

func (StyleWrap) Kind() string             { return KindStyleWrap }
func (StyleWrap) AcceptsInputs() bool      { return true }
func (StyleWrap) AcceptsNamedInputs() bool { return true }
func (StyleWrap) PrefersDebounce() bool    { return true }

func (StyleWrap) DefaultConfig() (map[string]any, error) {
	return encodeConfig(StyleWrapConfig{Tag: "div"})
}

func (StyleWrap) Describe(config map[string]any) string {
	var cfg StyleWrapConfig
	if err := decodeConfig(config, &cfg); err != nil || cfg.Tag == "" {
		return "style wrap"
	}
	return "style wrap <" + cfg.Tag + ">"
}

func (StyleWrap) Transform(_ context.Context, config map[string]any, inputs []value.Value, named map[string]value.Value, _ *plugin.TransformOptions) (value.Value, error) {
	var cfg StyleWrapConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	tag := cfg.Tag
	if tag == "" {
		tag = "div"
	}

	var body strings.Builder
	for i, in := range inputs {
		s, err := inputText(in, i)
		if err != nil {
			return nil, err
		}
		body.WriteString(s)
	}

	style := ""
	if in, ok := named[StyleInput]; ok {
		css, ok := value.TextContents(in)
		if !ok {
			return nil, fmt.Errorf("named input %q: cannot use %s as CSS", StyleInput, in.TypeID())
		}
		style = collapseCSS(css)
	}

	if style == "" {
		return value.HTML{Contents: fmt.Sprintf("<%s>%s</%s>", tag, body.String(), tag)}, nil
	}
	return value.HTML{Contents: fmt.Sprintf(`<%s style="%s">%s</%s>`, tag, html.EscapeString(style), body.String(), tag)}, nil
}

// collapseCSS folds declarations onto one line.
func collapseCSS(css string) string {
	fields := strings.FieldsFunc(css, func(r rune) bool { return r == '\n' || r == '\r' })
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return strings.TrimSpace(strings.Join(fields, " "))
}
