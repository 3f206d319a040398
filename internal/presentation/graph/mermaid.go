package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cpsdqs/prechoster/pkg/domain"
)

// GraphOverlay contains evaluation results to visualize on the graph.
type GraphOverlay struct {
	Evaluated []domain.ModuleID
	Failed    domain.ModuleID
}

// GenerateMermaid produces a Mermaid flowchart of a document.
// It applies semantic styling:
// - Output: ((Circle))
// - Source (no incoming edges): ([Stadium])
// - Default: [Rectangle]
// Named edges are dotted and labelled with the input name. Overlay styles
// mark evaluated and failed modules if provided.
func GenerateMermaid(state domain.DocumentState, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	outputID := sanitizeMermaidID(string(domain.OutputID))
	fmt.Fprintf(&sb, "    %s((\"output\"))\n", outputID)

	for _, m := range state.Modules {
		safeID := sanitizeMermaidID(string(m.ID))

		opener, closer := "[", "]"
		if len(domain.Senders(state, m.ID)) == 0 {
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label(m), closer)

		for _, target := range m.Sends {
			fmt.Fprintf(&sb, "    %s --> %s\n", safeID, sanitizeMermaidID(string(target)))
		}

		targets := make([]domain.ModuleID, 0, len(m.NamedSends))
		for target := range m.NamedSends {
			targets = append(targets, target)
		}
		slices.Sort(targets)
		for _, target := range targets {
			for _, name := range m.NamedSends[target] {
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", safeID, escape(name), sanitizeMermaidID(string(target)))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// black text stays readable on light fills in both themes
		sb.WriteString("    classDef evaluated fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Evaluated {
			safeID := sanitizeMermaidID(string(id))
			if !seen[safeID] && safeID != "" && id != overlay.Failed {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s evaluated;\n", safeID)
			}
		}
		if overlay.Failed != "" {
			fmt.Fprintf(&sb, "    class %s failed;\n", sanitizeMermaidID(string(overlay.Failed)))
		}
	}

	return sb.String()
}

func label(m *domain.Module) string {
	if m.Title != "" {
		return escape(m.Title)
	}
	return escape(fmt.Sprintf("%s: %s", m.ID, m.Plugin))
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
