// Package orderer computes the execution order of workflow nodes.
package orderer

import (
	"context"

	"github.com/davidthor/chainctl/pkg/ctxlog"
	"github.com/davidthor/chainctl/pkg/workflow"
)

// Strategy identifies how an order was produced.
type Strategy string

const (
	// StrategyAnchored follows the first flow path from the foreachModel
	// anchor to a chainFileOutput terminal.
	StrategyAnchored Strategy = "anchored"
	// StrategyTopological is a stable Kahn sort over all flow edges.
	StrategyTopological Strategy = "topological"
)

// Result is the computed order of executable node IDs.
type Result struct {
	IDs      []string `json:"ids" yaml:"ids"`
	Strategy Strategy `json:"strategy" yaml:"strategy"`
}

// Order returns the executable nodes of g in execution order. Structural
// nodes are never part of the result. Nodes on a flow cycle, or unreachable
// from the anchor when a path exists, are omitted.
func Order(ctx context.Context, g *workflow.Graph) Result {
	adj := buildAdjacency(ctx, g)

	if ids, ok := anchoredPath(g, adj); ok {
		return Result{IDs: executable(g, ids), Strategy: StrategyAnchored}
	}

	ids := kahn(ctx, g, adj)
	return Result{IDs: executable(g, ids), Strategy: StrategyTopological}
}

// adjacency lists flow successors per node, in edge declaration order.
type adjacency map[string][]string

func buildAdjacency(ctx context.Context, g *workflow.Graph) adjacency {
	logger := ctxlog.FromContext(ctx)

	present := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		present[n.ID] = true
	}

	adj := make(adjacency, len(g.Nodes))
	for _, e := range g.FlowEdges() {
		if !present[e.Source] || !present[e.Target] {
			logger.Warn("dropping edge with unknown endpoint",
				"edge", e.ID, "source", e.Source, "target", e.Target)
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

// anchoredPath searches depth-first from the first foreachModel node and
// returns the path to the first chainFileOutput node reached, excluding the
// terminal itself.
func anchoredPath(g *workflow.Graph, adj adjacency) ([]string, bool) {
	anchor, ok := g.FirstOfType(workflow.NodeTypeForeachModel)
	if !ok {
		return nil, false
	}
	terminals := make(map[string]bool)
	for _, n := range g.NodesByType(workflow.NodeTypeChainFileOutput) {
		terminals[n.ID] = true
	}
	if len(terminals) == 0 {
		return nil, false
	}

	onPath := make(map[string]bool)
	// dead holds nodes already explored without reaching a terminal.
	dead := make(map[string]bool)
	var path []string

	var visit func(id string) bool
	visit = func(id string) bool {
		// Terminal first, so a sink shared by several branches is still found.
		if terminals[id] {
			return true
		}
		if onPath[id] || dead[id] {
			return false
		}
		onPath[id] = true
		path = append(path, id)
		for _, next := range adj[id] {
			if visit(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		onPath[id] = false
		dead[id] = true
		return false
	}

	if !visit(anchor.ID) {
		return nil, false
	}
	return path, true
}

// kahn is a FIFO topological sort seeded in node declaration order.
func kahn(ctx context.Context, g *workflow.Graph, adj adjacency) []string {
	inDegree := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, seen := inDegree[n.ID]; !seen {
			inDegree[n.ID] = 0
		}
	}
	for _, targets := range adj {
		for _, t := range targets {
			inDegree[t]++
		}
	}

	var queue []string
	queued := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 && !queued[n.ID] {
			queue = append(queue, n.ID)
			queued[n.ID] = true
		}
	}

	result := make([]string, 0, len(inDegree))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		for _, next := range adj[id] {
			inDegree[next]--
			if inDegree[next] == 0 && !queued[next] {
				queue = append(queue, next)
				queued[next] = true
			}
		}
	}

	if len(result) != len(inDegree) {
		var omitted []string
		for _, n := range g.Nodes {
			if !queued[n.ID] {
				omitted = append(omitted, n.ID)
				queued[n.ID] = true
			}
		}
		ctxlog.FromContext(ctx).Warn("flow cycle detected, omitting nodes from order", "nodes", omitted)
	}

	return result
}

// executable drops structural nodes and unknown IDs.
func executable(g *workflow.Graph, ids []string) []string {
	types := make(map[string]workflow.NodeType, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, seen := types[n.ID]; !seen {
			types[n.ID] = n.Type
		}
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		t, ok := types[id]
		if !ok || workflow.IsStructural(t) {
			continue
		}
		out = append(out, id)
	}
	return out
}
