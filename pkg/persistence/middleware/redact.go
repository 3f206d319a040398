package middleware

import (
	"context"
	"regexp"

	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/ports"
)

// Redacted replaces every masked value.
const Redacted = "***"

type redactMiddleware struct {
	next     ports.DocumentStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks module data values whose
// keys match any of the patterns, e.g. API tokens pasted into plugin config.
// Masking applies on Save only; the caller's document is left untouched.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, id string, doc domain.DocumentState) error {
	modules := make([]*domain.Module, len(doc.Modules))
	for i, mod := range doc.Modules {
		if !m.matchesAny(mod.Data) {
			modules[i] = mod
			continue
		}
		modules[i] = mod.WithData(maskMap(mod.Data, m.patterns))
	}
	return m.next.Save(ctx, id, doc.WithModules(modules))
}

func (m *redactMiddleware) Load(ctx context.Context, id string) (domain.DocumentState, error) {
	return m.next.Load(ctx, id)
}

func (m *redactMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactMiddleware) matchesAny(data map[string]any) bool {
	for k, v := range data {
		for _, p := range m.patterns {
			if p.MatchString(k) {
				return true
			}
		}
		if sub, ok := v.(map[string]any); ok && m.matchesAny(sub) {
			return true
		}
	}
	return false
}

// maskMap returns a masked deep copy of nested maps. Other values are shared.
func maskMap(in map[string]any, patterns []*regexp.Regexp) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				out[k] = Redacted
				masked = true
				break
			}
		}
		if masked {
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			out[k] = maskMap(sub, patterns)
		} else {
			out[k] = v
		}
	}
	return out
}
