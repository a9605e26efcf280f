package workflow

import (
	"fmt"
	"sort"
)

// Lint reports authoring problems the engine tolerates at run time: dangling
// edges, duplicate ids, unknown node types, missing anchor or output nodes
// and flow cycles. known reports whether a node type has a generator; nil
// skips that check.
func Lint(g *Graph, known func(NodeType) bool) []string {
	var warnings []string

	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if seen[n.ID] {
			warnings = append(warnings, fmt.Sprintf("duplicate node id %q", n.ID))
		}
		seen[n.ID] = true

		if known != nil && !IsStructural(n.Type) && !known(n.Type) {
			warnings = append(warnings, fmt.Sprintf("node %q has unknown type %q and will be skipped", n.ID, n.Type))
		}
	}

	for _, e := range g.Edges {
		for _, end := range []string{e.Source, e.Target} {
			if !seen[end] {
				warnings = append(warnings, fmt.Sprintf("edge %s -> %s references unknown node %q", e.Source, e.Target, end))
			}
		}
	}

	if _, ok := g.FirstOfType(NodeTypeForeachModel); !ok {
		warnings = append(warnings, "no foreachModel node; nodes run in topological order")
	}
	if _, ok := g.OutputNode(); !ok {
		warnings = append(warnings, "no chainFileOutput node; defaults apply for model type and project folder")
	}

	if cyclic := FlowCycles(g); len(cyclic) > 0 {
		warnings = append(warnings, fmt.Sprintf("flow cycle through %v; these nodes may be omitted", cyclic))
	}

	return warnings
}

// FlowCycles returns the sorted ids of nodes that sit on a flow cycle.
func FlowCycles(g *Graph) []string {
	adj := make(map[string][]string)
	for _, e := range g.FlowEdges() {
		if g.HasNode(e.Source) && g.HasNode(e.Target) {
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}

	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.Nodes))
	onCycle := make(map[string]bool)
	var stack []string

	var visit func(id string)
	visit = func(id string) {
		color[id] = grey
		stack = append(stack, id)
		for _, next := range adj[id] {
			switch color[next] {
			case white:
				visit(next)
			case grey:
				for i := len(stack) - 1; i >= 0; i-- {
					onCycle[stack[i]] = true
					if stack[i] == next {
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, n := range g.Nodes {
		if color[n.ID] == white {
			visit(n.ID)
		}
	}

	out := make([]string, 0, len(onCycle))
	for id := range onCycle {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
