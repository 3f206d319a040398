package plugins

import (
	"context"
	"strings"

	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/value"
)

// KindConcat joins its positional inputs.
const KindConcat = "concat"

// ConcatConfig configures a concat module.
type ConcatConfig struct {
	Separator string `mapstructure:"separator"`
	Language  string `mapstructure:"language" validate:"omitempty,oneof=markdown html css javascript text"`
}

// Concat joins the text of every positional input in order.
type Concat struct{}

var _ plugin.Capability = Concat{}

func (Concat) Kind() string             { return KindConcat }
func (Concat) AcceptsInputs() bool      { return true }
func (Concat) AcceptsNamedInputs() bool { return false }

func (Concat) DefaultConfig() (map[string]any, error) {
	return encodeConfig(ConcatConfig{Separator: "\n", Language: LanguageText})
}

func (Concat) Describe(config map[string]any) string {
	var cfg ConcatConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return "concat"
	}
	return "concat as " + cfg.Language
}

func (Concat) Transform(_ context.Context, config map[string]any, inputs []value.Value, _ map[string]value.Value, opts *plugin.TransformOptions) (value.Value, error) {
	var cfg ConcatConfig
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
	if opts != nil && opts.UserData != nil {
		opts.UserData["inputs"] = len(inputs)
	}
	return value.FromText(languageKind(cfg.Language), strings.Join(parts, cfg.Separator)), nil
}
