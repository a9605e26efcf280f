// Package visual renders workflow graphs as Mermaid flowcharts.
package visual

import (
	"fmt"
	"strings"

	"github.com/davidthor/chainctl/pkg/workflow"
)

// MermaidOptions controls how a workflow is rendered to a Mermaid flowchart.
type MermaidOptions struct {
	// Direction is the flowchart direction: "TD" (top-down) or "LR" (left-right).
	// Defaults to "LR" if empty.
	Direction string

	// Title is an optional diagram title.
	Title string

	// DataEdges includes parameter/data edges as dotted links.
	DataEdges bool

	// Order numbers the listed node IDs in execution order.
	Order []string
}

// ImageOptions extends MermaidOptions with image rendering settings.
type ImageOptions struct {
	MermaidOptions

	// Width is the PNG width in pixels. 0 means auto.
	Width int

	// Height is the PNG height in pixels. 0 means auto.
	Height int

	// Theme is the Mermaid theme (default, dark, forest, neutral).
	// Defaults to "default" if empty.
	Theme string
}

// RenderMermaid generates a Mermaid flowchart from a workflow graph. Nodes
// are declared in document order; edges with an unknown endpoint are omitted.
func RenderMermaid(g *workflow.Graph, opts MermaidOptions) (string, error) {
	if g == nil {
		return "", fmt.Errorf("graph is nil")
	}

	direction := opts.Direction
	if direction == "" {
		direction = "LR"
	}

	var b strings.Builder

	if opts.Title != "" {
		b.WriteString(fmt.Sprintf("---\ntitle: %s\n---\n", opts.Title))
	}
	b.WriteString(fmt.Sprintf("flowchart %s\n", direction))

	step := make(map[string]int, len(opts.Order))
	for i, id := range opts.Order {
		step[id] = i + 1
	}

	displayIDs := make(map[string]string, len(g.Nodes))
	for i, n := range g.Nodes {
		did := fmt.Sprintf("n%d", i)
		displayIDs[n.ID] = did

		label := n.Label()
		if s, ok := step[n.ID]; ok {
			label = fmt.Sprintf("%d. %s", s, label)
		}
		// Structural nodes render as stadiums.
		lb, rb := "[\"", "\"]"
		if workflow.IsStructural(n.Type) {
			lb, rb = "([\"", "\"])"
		}
		b.WriteString(fmt.Sprintf("    %s%s%s%s\n", did, lb, escapeMermaidLabel(label), rb))
	}

	if len(g.Edges) > 0 {
		b.WriteString("\n")
	}

	for _, e := range g.Edges {
		from, ok := displayIDs[e.Source]
		if !ok {
			continue
		}
		to, ok := displayIDs[e.Target]
		if !ok {
			continue
		}

		if e.IsFlow() {
			b.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
			continue
		}
		if opts.DataEdges {
			b.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", from, escapeMermaidLabel(handleLabel(e)), to))
		}
	}

	return b.String(), nil
}

func handleLabel(e workflow.Edge) string {
	if e.TargetHandle != "" {
		return e.TargetHandle
	}
	return e.SourceHandle
}

// escapeMermaidLabel escapes characters that have special meaning in Mermaid labels.
func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, `"`, `#quot;`)
}
