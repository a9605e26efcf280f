package orderer

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidthor/chainctl/pkg/ctxlog"
	"github.com/davidthor/chainctl/pkg/workflow"
)

func node(id string, t workflow.NodeType) workflow.Node {
	return workflow.Node{ID: id, Type: t}
}

func edge(source, target string) workflow.Edge {
	return workflow.Edge{ID: source + "-" + target, Source: source, Target: target}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func TestOrder_AnchoredPath(t *testing.T) {
	g := &workflow.Graph{
		Nodes: []workflow.Node{
			node("F", workflow.NodeTypeForeachModel),
			node("a", "cleanModel"),
			node("b", "createView"),
			node("O1", workflow.NodeTypeChainFileOutput),
			node("O2", workflow.NodeTypeChainFileOutput),
			node("x", "addComment"),
		},
		Edges: []workflow.Edge{
			edge("F", "a"),
			edge("a", "b"),
			edge("b", "O2"),
			edge("x", "O1"),
		},
	}

	res := Order(context.Background(), g)
	assert.Equal(t, StrategyAnchored, res.Strategy)
	assert.Equal(t, []string{"a", "b"}, res.IDs)
}

func TestOrder_AnchoredBacktracksDeadEnds(t *testing.T) {
	g := &workflow.Graph{
		Nodes: []workflow.Node{
			node("F", workflow.NodeTypeForeachModel),
			node("dead", "addComment"),
			node("a", "cleanModel"),
			node("O", workflow.NodeTypeChainFileOutput),
		},
		Edges: []workflow.Edge{
			edge("F", "dead"),
			edge("F", "a"),
			edge("a", "O"),
		},
	}

	res := Order(context.Background(), g)
	assert.Equal(t, StrategyAnchored, res.Strategy)
	assert.Equal(t, []string{"a"}, res.IDs)
}

func TestOrder_AnchoredIgnoresDataEdges(t *testing.T) {
	g := &workflow.Graph{
		Nodes: []workflow.Node{
			node("F", workflow.NodeTypeForeachModel),
			node("v", workflow.NodeTypeSetVariable),
			node("a", "cleanModel"),
			node("O", workflow.NodeTypeChainFileOutput),
		},
		Edges: []workflow.Edge{
			{Source: "F", Target: "v", SourceHandle: "value:out"},
			{Source: "F", Target: "a", SourceHandle: "flow:out", TargetHandle: "flow:in"},
			{Source: "v", Target: "a", TargetHandle: "param:discipline"},
			edge("a", "O"),
		},
	}

	res := Order(context.Background(), g)
	assert.Equal(t, StrategyAnchored, res.Strategy)
	assert.Equal(t, []string{"a"}, res.IDs)
}

func TestOrder_AnchoredCycleTerminates(t *testing.T) {
	g := &workflow.Graph{
		Nodes: []workflow.Node{
			node("F", workflow.NodeTypeForeachModel),
			node("a", "cleanModel"),
			node("b", "createView"),
			node("O", workflow.NodeTypeChainFileOutput),
		},
		Edges: []workflow.Edge{
			edge("F", "a"),
			edge("a", "b"),
			edge("b", "a"),
			edge("b", "O"),
		},
	}

	res := Order(context.Background(), g)
	assert.Equal(t, StrategyAnchored, res.Strategy)
	assert.Equal(t, []string{"a", "b"}, res.IDs)
}

func TestOrder_FallsBackWhenNoPath(t *testing.T) {
	g := &workflow.Graph{
		Nodes: []workflow.Node{
			node("F", workflow.NodeTypeForeachModel),
			node("a", "cleanModel"),
			node("b", "createView"),
			node("O", workflow.NodeTypeChainFileOutput),
		},
		Edges: []workflow.Edge{
			edge("F", "a"),
			edge("a", "b"),
		},
	}

	res := Order(context.Background(), g)
	assert.Equal(t, StrategyTopological, res.Strategy)
	assert.Equal(t, []string{"a", "b"}, res.IDs)
}

// diamonds chains k fan-out/fan-in pairs after the foreachModel node.
func diamonds(k int) *workflow.Graph {
	g := &workflow.Graph{Nodes: []workflow.Node{node("F", workflow.NodeTypeForeachModel)}}
	prev := "F"
	for i := 0; i < k; i++ {
		l, r, j := fmt.Sprintf("l%d", i), fmt.Sprintf("r%d", i), fmt.Sprintf("j%d", i)
		g.Nodes = append(g.Nodes, node(l, "addComment"), node(r, "addComment"), node(j, "addComment"))
		g.Edges = append(g.Edges, edge(prev, l), edge(prev, r), edge(l, j), edge(r, j))
		prev = j
	}
	g.Nodes = append(g.Nodes, node("O", workflow.NodeTypeChainFileOutput))
	return g
}

func orderWithin(t *testing.T, g *workflow.Graph, limit time.Duration) Result {
	t.Helper()
	done := make(chan Result, 1)
	go func() { done <- Order(context.Background(), g) }()
	select {
	case res := <-done:
		return res
	case <-time.After(limit):
		t.Fatalf("Order did not finish within %s", limit)
		return Result{}
	}
}

func TestOrder_DiamondsUnreachableTerminal(t *testing.T) {
	g := diamonds(40)

	res := orderWithin(t, g, 5*time.Second)
	assert.Equal(t, StrategyTopological, res.Strategy)
	assert.Len(t, res.IDs, 3*40)
}

func TestOrder_DiamondsBeforeReachableBranch(t *testing.T) {
	g := diamonds(40)
	// The terminal is only reachable through the last branch of the anchor,
	// so every diamond is searched first.
	g.Nodes = append(g.Nodes, node("late", "cleanModel"))
	g.Edges = append(g.Edges, edge("F", "late"), edge("late", "O"))

	res := orderWithin(t, g, 5*time.Second)
	assert.Equal(t, StrategyAnchored, res.Strategy)
	assert.Equal(t, []string{"late"}, res.IDs)
}

func TestOrder_TopologicalRespectsFlowEdges(t *testing.T) {
	g := &workflow.Graph{
		Nodes: []workflow.Node{
			node("d", "addComment"),
			node("c", "createView"),
			node("b", "cleanModel"),
			node("a", "import"),
			node("e", "renameModel"),
		},
		Edges: []workflow.Edge{
			edge("a", "b"),
			edge("b", "c"),
			edge("a", "d"),
			edge("c", "d"),
			{Source: "d", Target: "a", TargetHandle: "param:x"},
		},
	}

	res := Order(context.Background(), g)
	require.Equal(t, StrategyTopological, res.Strategy)
	require.Len(t, res.IDs, 5)

	for _, e := range g.Edges {
		if !e.IsFlow() {
			continue
		}
		assert.Less(t, indexOf(res.IDs, e.Source), indexOf(res.IDs, e.Target),
			"%s must come before %s", e.Source, e.Target)
	}
	// Seeds are taken in declaration order.
	assert.Equal(t, []string{"a", "e", "b", "c", "d"}, res.IDs)
}

func TestOrder_DanglingEdge(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.New("warn", "text", &buf))

	g := &workflow.Graph{
		Nodes: []workflow.Node{
			node("a", "cleanModel"),
			node("b", "createView"),
		},
		Edges: []workflow.Edge{
			edge("a", "missing"),
			edge("ghost", "b"),
			edge("a", "b"),
		},
	}

	var res Result
	require.NotPanics(t, func() { res = Order(ctx, g) })
	assert.Equal(t, []string{"a", "b"}, res.IDs)
	assert.Contains(t, buf.String(), "unknown endpoint")
}

func TestOrder_CycleOmitted(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.New("warn", "text", &buf))

	g := &workflow.Graph{
		Nodes: []workflow.Node{
			node("a", "cleanModel"),
			node("b", "createView"),
			node("c", "addComment"),
			node("d", "renameModel"),
		},
		Edges: []workflow.Edge{
			edge("a", "b"),
			edge("b", "c"),
			edge("c", "b"),
			edge("a", "d"),
		},
	}

	res := Order(ctx, g)
	assert.Equal(t, StrategyTopological, res.Strategy)
	assert.Equal(t, []string{"a", "d"}, res.IDs)
	assert.Contains(t, buf.String(), "flow cycle detected")
}

func TestOrder_FiltersStructuralNodes(t *testing.T) {
	g := &workflow.Graph{
		Nodes: []workflow.Node{
			node("t", workflow.NodeTypeExcelModels),
			node("v", workflow.NodeTypeSetVariable),
			node("a", "cleanModel"),
			node("O", workflow.NodeTypeChainFileOutput),
		},
		Edges: []workflow.Edge{
			edge("t", "a"),
			edge("a", "O"),
		},
	}

	res := Order(context.Background(), g)
	assert.Equal(t, StrategyTopological, res.Strategy)
	assert.Equal(t, []string{"a"}, res.IDs)
}

func TestOrder_Deterministic(t *testing.T) {
	g := &workflow.Graph{
		Nodes: []workflow.Node{
			node("c", "createView"),
			node("a", "cleanModel"),
			node("b", "addComment"),
		},
	}

	first := Order(context.Background(), g)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Order(context.Background(), g))
	}
	assert.Equal(t, []string{"c", "a", "b"}, first.IDs)
}

func TestOrder_EmptyGraph(t *testing.T) {
	res := Order(context.Background(), &workflow.Graph{})
	assert.Empty(t, res.IDs)
	assert.Equal(t, StrategyTopological, res.Strategy)
}
