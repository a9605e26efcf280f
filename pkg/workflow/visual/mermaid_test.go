package visual

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidthor/chainctl/pkg/workflow"
)

func buildTestGraph() *workflow.Graph {
	return &workflow.Graph{
		Nodes: []workflow.Node{
			{ID: "loop", Type: workflow.NodeTypeForeachModel},
			{ID: "clean", Type: "cleanModel", Data: map[string]interface{}{"label": `Clean "3D"`}},
			{ID: "view", Type: "createView"},
			{ID: "out", Type: workflow.NodeTypeChainFileOutput},
			{ID: "vars", Type: workflow.NodeTypeSetVariable},
		},
		Edges: []workflow.Edge{
			{Source: "loop", Target: "clean"},
			{Source: "clean", Target: "view"},
			{Source: "view", Target: "out"},
			{Source: "vars", Target: "clean", SourceHandle: "value", TargetHandle: "param:discipline"},
			{Source: "view", Target: "ghost"},
		},
	}
}

func TestRenderMermaid_NilGraph(t *testing.T) {
	_, err := RenderMermaid(nil, MermaidOptions{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}

func TestRenderMermaid_EmptyGraph(t *testing.T) {
	out, err := RenderMermaid(&workflow.Graph{}, MermaidOptions{})
	require.NoError(t, err)
	assert.Equal(t, "flowchart LR\n", out)
}

func TestRenderMermaid_AllNodes(t *testing.T) {
	out, err := RenderMermaid(buildTestGraph(), MermaidOptions{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "flowchart LR\n"))
	assert.Contains(t, out, `n0(["loop (foreachModel)"])`)
	assert.Contains(t, out, `n1["Clean #quot;3D#quot;"]`)
	assert.Contains(t, out, `n2["view (createView)"]`)
	assert.Contains(t, out, `n3(["out (chainFileOutput)"])`)
	assert.Contains(t, out, `n4(["vars (setVariable)"])`)

	assert.Contains(t, out, "n0 --> n1")
	assert.Contains(t, out, "n1 --> n2")
	assert.Contains(t, out, "n2 --> n3")
	assert.NotContains(t, out, "n4 -")
	assert.Equal(t, 3, strings.Count(out, "-->"))
}

func TestRenderMermaid_DataEdges(t *testing.T) {
	out, err := RenderMermaid(buildTestGraph(), MermaidOptions{DataEdges: true})
	require.NoError(t, err)
	assert.Contains(t, out, `n4 -. "param:discipline" .-> n1`)
}

func TestRenderMermaid_Options(t *testing.T) {
	out, err := RenderMermaid(buildTestGraph(), MermaidOptions{
		Direction: "TD",
		Title:     "Road batch",
		Order:     []string{"clean", "view"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "---\ntitle: Road batch\n---\nflowchart TD\n"))
	assert.Contains(t, out, `n1["1. Clean #quot;3D#quot;"]`)
	assert.Contains(t, out, `n2["2. view (createView)"]`)
}

func TestMmdcArgs(t *testing.T) {
	args := mmdcArgs("in.mmd", "out.svg", "svg", ImageOptions{Width: 800})
	assert.Equal(t, []string{"-i", "in.mmd", "-o", "out.svg", "-e", "svg", "-t", "default", "-w", "800"}, args)
}

func TestRenderImage_UnsupportedFormat(t *testing.T) {
	err := RenderImage(context.Background(), buildTestGraph(), "diagram.gif", ImageOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image format")
}
