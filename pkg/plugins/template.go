package plugins

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/value"
)

// KindTemplate substitutes inputs into a text/template body.
const KindTemplate = "template"

const templateInputsKey = "inputs"

// TemplateConfig configures a template module.
type TemplateConfig struct {
	Template string `mapstructure:"template"`
	Language string `mapstructure:"language" validate:"omitempty,oneof=markdown html css javascript text"`
}

// Template renders its body with named inputs available as {{ .name }} and
// positional inputs as {{ .inputs }}. Missing keys are an error, and so is a
// named input called "inputs".
type Template struct{}

var _ plugin.Capability = Template{}

func (Template) Kind() string             { return KindTemplate }
func (Template) AcceptsInputs() bool      { return true }
func (Template) AcceptsNamedInputs() bool { return true }

func (Template) DefaultConfig() (map[string]any, error) {
	return encodeConfig(TemplateConfig{Language: LanguageMarkdown})
}

func (Template) Describe(config map[string]any) string {
	var cfg TemplateConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return "template"
	}
	return "template: " + summarize(cfg.Template, 32)
}

func (Template) Transform(_ context.Context, config map[string]any, inputs []value.Value, named map[string]value.Value, _ *plugin.TransformOptions) (value.Value, error) {
	var cfg TemplateConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	tmpl, err := template.New("module").Option("missingkey=error").Parse(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	data := make(map[string]any, len(named)+1)
	positional := make([]string, len(inputs))
	for i, in := range inputs {
		s, err := inputText(in, i)
		if err != nil {
			return nil, err
		}
		positional[i] = s
	}
	data[templateInputsKey] = positional
	for name, in := range named {
		if name == templateInputsKey {
			return nil, fmt.Errorf("named input %q is reserved for positional inputs", name)
		}
		s, ok := value.Markdown(in)
		if !ok {
			return nil, fmt.Errorf("named input %q: cannot use %s as text", name, in.TypeID())
		}
		data[name] = s
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return value.FromText(languageKind(cfg.Language), out.String()), nil
}
