package plugins

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/cpsdqs/prechoster/pkg/value"
)

// ErrInvalidConfig is wrapped by every configuration decoding failure.
var ErrInvalidConfig = errors.New("invalid module config")

var validate = validator.New()

// decodeConfig decodes module data into out and validates it.
func decodeConfig(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, formatValidationError(err))
	}
	return nil
}

// encodeConfig turns a config struct into module data.
func encodeConfig(cfg any) (map[string]any, error) {
	out := map[string]any{}
	if err := mapstructure.Decode(cfg, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "base64":
			msgs = append(msgs, field+" must be base64")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// Languages accepted by the language config field.
const (
	LanguageMarkdown   = "markdown"
	LanguageHTML       = "html"
	LanguageCSS        = "css"
	LanguageJavaScript = "javascript"
	LanguageText       = "text"
)

func languageKind(lang string) value.Kind {
	switch lang {
	case LanguageHTML:
		return value.KindHTML
	case LanguageCSS:
		return value.KindCSS
	case LanguageJavaScript:
		return value.KindJavaScript
	default:
		return value.KindText
	}
}

// inputText returns the text of an input, converting where possible.
func inputText(v value.Value, index int) (string, error) {
	if s, ok := value.TextContents(v); ok {
		return s, nil
	}
	if s, ok := value.Markdown(v); ok {
		return s, nil
	}
	return "", fmt.Errorf("input %d: cannot use %s as text", index+1, v.TypeID())
}

func summarize(s string, n int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "…"
	}
	if r := []rune(s); len(r) > n {
		s = string(r[:n]) + "…"
	}
	return s
}
