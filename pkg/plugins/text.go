package plugins

import (
	"context"

	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/value"
)

// KindText is a source module holding literal text.
const KindText = "text"

// TextConfig configures a text module.
type TextConfig struct {
	Contents string `mapstructure:"contents"`
	Language string `mapstructure:"language" validate:"omitempty,oneof=markdown html css javascript text"`
}

// Text emits its configured contents.
type Text struct{}

var _ plugin.Capability = Text{}

func (Text) Kind() string             { return KindText }
func (Text) AcceptsInputs() bool      { return false }
func (Text) AcceptsNamedInputs() bool { return false }

func (Text) DefaultConfig() (map[string]any, error) {
	return encodeConfig(TextConfig{Language: LanguageMarkdown})
}

func (Text) Describe(config map[string]any) string {
	var cfg TextConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return "text"
	}
	if cfg.Contents == "" {
		return "empty " + cfg.Language
	}
	return summarize(cfg.Contents, 40)
}

func (Text) Transform(_ context.Context, config map[string]any, _ []value.Value, _ map[string]value.Value, _ *plugin.TransformOptions) (value.Value, error) {
	var cfg TextConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	return value.FromText(languageKind(cfg.Language), cfg.Contents), nil
}
