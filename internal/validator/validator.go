package validator

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/schema"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a document.
type Issue struct {
	Severity Severity
	ModuleID domain.ModuleID
	Message  string
}

func (i Issue) String() string {
	if i.ModuleID == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.ModuleID, i.Message)
}

// Report collects the issues of one validation run in document order.
type Report struct {
	Issues []Issue
}

func (r *Report) add(sev Severity, id domain.ModuleID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: sev, ModuleID: id, Message: fmt.Sprintf(format, args...)})
}

// Errors returns the error-level issues.
func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-level issues.
func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Err summarizes the error-level issues, or returns nil.
func (r *Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, issue := range errs {
		lines[i] = issue.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

// ValidateDocument checks a document without evaluating it: structure,
// edges to missing modules, plugin kinds unknown to the registry, inputs
// the receiving plugin does not accept, cycles, and modules that never
// reach the output.
func ValidateDocument(ctx context.Context, state domain.DocumentState, registry *plugin.Registry) *Report {
	r := &Report{}

	if err := schema.Check(state); err != nil {
		for _, e := range schema.ValidationErrors(err) {
			r.add(SeverityError, "", "%v", e)
		}
	}

	state = state.WithModules(slices.DeleteFunc(slices.Clone(state.Modules), func(m *domain.Module) bool { return m == nil }))

	caps := make(map[string]plugin.Capability)
	for _, kind := range state.PluginKinds() {
		if registry == nil || !registry.Has(kind) {
			continue
		}
		c, err := registry.Load(ctx, kind)
		if err != nil {
			r.add(SeverityError, "", "plugin %s failed to load: %v", kind, err)
			continue
		}
		caps[kind] = c
	}

	for _, m := range state.Modules {
		if registry != nil && !registry.Has(m.Plugin) {
			r.add(SeverityError, m.ID, "unknown plugin kind %q", m.Plugin)
		}
		for _, target := range m.Sends {
			if target == domain.OutputID {
				continue
			}
			if _, ok := state.Module(target); !ok {
				r.add(SeverityError, m.ID, "sends to missing module %s", target)
			}
		}
		for _, target := range sortedTargets(m.NamedSends) {
			if target == domain.OutputID {
				r.add(SeverityWarning, m.ID, "named sends to the output are ignored")
				continue
			}
			if _, ok := state.Module(target); !ok {
				r.add(SeverityError, m.ID, "sends to missing module %s", target)
			}
		}

		c, ok := caps[m.Plugin]
		if !ok {
			continue
		}
		if !c.AcceptsInputs() && len(domain.PositionalInputs(state, m.ID)) > 0 {
			r.add(SeverityError, m.ID, "%s does not accept inputs", m.Plugin)
		}
		if !c.AcceptsNamedInputs() && len(domain.NamedInputs(state, m.ID)) > 0 {
			r.add(SeverityError, m.ID, "%s does not accept named inputs", m.Plugin)
		}
	}

	for _, cycle := range findCycles(state) {
		r.add(SeverityError, cycle[0], "cycle: %s", joinIDs(cycle))
	}

	reaching := reachesOutput(state)
	for _, m := range state.Modules {
		if m.ID != "" && !reaching[m.ID] {
			r.add(SeverityWarning, m.ID, "does not contribute to the output")
		}
	}

	return r
}

func sortedTargets(named map[domain.ModuleID][]string) []domain.ModuleID {
	targets := make([]domain.ModuleID, 0, len(named))
	for t := range named {
		targets = append(targets, t)
	}
	slices.Sort(targets)
	return targets
}

// edges returns the outgoing targets of m, positional first.
func edges(m *domain.Module) []domain.ModuleID {
	out := slices.Clone(m.Sends)
	for _, t := range sortedTargets(m.NamedSends) {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// findCycles reports one cycle per back edge found by a depth-first walk in
// document order.
func findCycles(state domain.DocumentState) [][]domain.ModuleID {
	const (
		unvisited = iota
		active
		finished
	)
	mark := make(map[domain.ModuleID]int)
	var stack []domain.ModuleID
	var cycles [][]domain.ModuleID

	var visit func(id domain.ModuleID)
	visit = func(id domain.ModuleID) {
		m, ok := state.Module(id)
		if !ok {
			return
		}
		mark[id] = active
		stack = append(stack, id)
		for _, next := range edges(m) {
			switch mark[next] {
			case active:
				start := slices.Index(stack, next)
				cycle := slices.Clone(stack[start:])
				cycles = append(cycles, append(cycle, next))
			case unvisited:
				visit(next)
			}
		}
		stack = stack[:len(stack)-1]
		mark[id] = finished
	}

	for _, m := range state.Modules {
		if mark[m.ID] == unvisited {
			visit(m.ID)
		}
	}
	return cycles
}

// reachesOutput marks every module with a path into the output.
func reachesOutput(state domain.DocumentState) map[domain.ModuleID]bool {
	reached := map[domain.ModuleID]bool{}
	queue := []domain.ModuleID{domain.OutputID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, sender := range domain.Senders(state, id) {
			if id == domain.OutputID && !slices.Contains(mustModule(state, sender).Sends, domain.OutputID) {
				// named sends to the output do not count
				continue
			}
			if !reached[sender] {
				reached[sender] = true
				queue = append(queue, sender)
			}
		}
	}
	return reached
}

func mustModule(state domain.DocumentState, id domain.ModuleID) *domain.Module {
	m, _ := state.Module(id)
	return m
}

func joinIDs(ids []domain.ModuleID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, " -> ")
}
