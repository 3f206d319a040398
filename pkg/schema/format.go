package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cpsdqs/prechoster/pkg/domain"
)

// CurrentVersion is the version written by Marshal.
const CurrentVersion = 2

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension. Unknown extensions
// mean JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// File is the on-disk shape of the current version.
type File struct {
	Version     int              `json:"version" yaml:"version"`
	Title       string           `json:"title" yaml:"title"`
	TitleInPost bool             `json:"title_in_post" yaml:"title_in_post"`
	Modules     []*domain.Module `json:"modules" yaml:"modules"`
}

// Marshal encodes state in the current version.
func Marshal(state domain.DocumentState, format Format) ([]byte, error) {
	f := File{
		Version:     CurrentVersion,
		Title:       state.Title,
		TitleInPost: state.TitleInPost,
		Modules:     state.Modules,
	}
	if f.Modules == nil {
		f.Modules = []*domain.Module{}
	}
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return data, nil
	}
}

// Unmarshal decodes a document of any supported version and validates its
// structure.
func Unmarshal(data []byte, format Format) (domain.DocumentState, error) {
	var probe struct {
		Version int `json:"version" yaml:"version"`
	}
	if err := unmarshal(data, format, &probe); err != nil {
		return domain.DocumentState{}, err
	}

	var state domain.DocumentState
	switch probe.Version {
	case 0, 1:
		var legacy fileV1
		if err := unmarshal(data, format, &legacy); err != nil {
			return domain.DocumentState{}, err
		}
		state = legacy.migrate()
	case CurrentVersion:
		var f File
		if err := unmarshal(data, format, &f); err != nil {
			return domain.DocumentState{}, err
		}
		state = domain.DocumentState{Title: f.Title, TitleInPost: f.TitleInPost, Modules: f.Modules}
	default:
		return domain.DocumentState{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, probe.Version)
	}

	state = normalize(state)
	if err := Check(state); err != nil {
		return domain.DocumentState{}, err
	}
	return state, nil
}

// Encode writes state to w.
func Encode(w io.Writer, state domain.DocumentState, format Format) error {
	data, err := Marshal(state, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode reads a whole document from r.
func Decode(r io.Reader, format Format) (domain.DocumentState, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.DocumentState{}, fmt.Errorf("read document: %w", err)
	}
	return Unmarshal(data, format)
}

func unmarshal(data []byte, format Format, out any) error {
	if format == FormatYAML {
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// normalize fills nil collections and canonicalizes named send sets.
func normalize(state domain.DocumentState) domain.DocumentState {
	if state.Modules == nil {
		state.Modules = []*domain.Module{}
	}
	for _, m := range state.Modules {
		if m == nil {
			continue
		}
		if m.Data == nil {
			m.Data = map[string]any{}
		}
		if m.Sends == nil {
			m.Sends = []domain.ModuleID{}
		}
		for target, names := range m.NamedSends {
			names = domain.NameSet(names)
			if len(names) == 0 {
				delete(m.NamedSends, target)
				continue
			}
			m.NamedSends[target] = names
		}
		if len(m.NamedSends) == 0 {
			m.NamedSends = nil
		}
	}
	return state
}

// Check reports structural problems: missing or duplicate ids, ids that
// collide with the output sink and modules without a plugin kind.
// Edges to unknown modules are allowed.
func Check(state domain.DocumentState) error {
	var errs []error
	seen := make(map[domain.ModuleID]bool, len(state.Modules))
	for i, m := range state.Modules {
		if m == nil {
			errs = append(errs, &ValidationError{Reason: fmt.Sprintf("module %d is empty", i+1)})
			continue
		}
		id := string(m.ID)
		switch {
		case m.ID == "":
			errs = append(errs, &ValidationError{Reason: fmt.Sprintf("module %d has no id", i+1)})
		case m.ID == domain.OutputID:
			errs = append(errs, &ValidationError{Module: id, Reason: "id is reserved for the output"})
		case seen[m.ID]:
			errs = append(errs, &ValidationError{Module: id, Reason: "duplicate id"})
		}
		seen[m.ID] = true
		if m.Plugin == "" {
			errs = append(errs, &ValidationError{Module: id, Reason: "missing plugin kind"})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
