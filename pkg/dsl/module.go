package dsl

import "github.com/cpsdqs/prechoster/pkg/domain"

// ModuleBuilder provides a fluent API for configuring a module.
type ModuleBuilder struct {
	module *domain.Module
}

// Set stores one configuration value.
func (m *ModuleBuilder) Set(key string, value any) *ModuleBuilder {
	m.module.Data[key] = value
	return m
}

// Data merges configuration values.
func (m *ModuleBuilder) Data(data map[string]any) *ModuleBuilder {
	for k, v := range data {
		m.module.Data[k] = v
	}
	return m
}

// To adds positional edges to the targets.
func (m *ModuleBuilder) To(targets ...domain.ModuleID) *ModuleBuilder {
	for _, t := range targets {
		m.module = m.module.WithSend(t)
	}
	return m
}

// ToOutput sends the module to the document output.
func (m *ModuleBuilder) ToOutput() *ModuleBuilder {
	return m.To(domain.OutputID)
}

// Named adds a named edge into the target's input slot.
func (m *ModuleBuilder) Named(target domain.ModuleID, name string) *ModuleBuilder {
	m.module = m.module.WithNamedSend(target, name)
	return m
}

// At places the module in the graph editor.
func (m *ModuleBuilder) At(x, y float64) *ModuleBuilder {
	m.module = m.module.WithPosition(domain.Position{X: x, Y: y})
	return m
}

// Title sets a display title.
func (m *ModuleBuilder) Title(title string) *ModuleBuilder {
	m.module.Title = title
	return m
}

// Build returns a copy of the module.
// This is primarily used by the Builder, but exposed for advanced usage.
func (m *ModuleBuilder) Build() *domain.Module {
	return m.module.Clone()
}
