package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidthor/chainctl/pkg/commands"
	"github.com/davidthor/chainctl/pkg/ctxlog"
	"github.com/davidthor/chainctl/pkg/variables"
	"github.com/davidthor/chainctl/pkg/workflow"
)

// failingEffect always fails its side effect but still emits a line.
type failingEffect struct{}

func (failingEffect) Params() []commands.Param { return nil }

func (failingEffect) Generate(commands.Params) []string { return []string{"after failure"} }

func (failingEffect) Apply(context.Context, commands.Params, string) error {
	return fmt.Errorf("disk full")
}

func echoRegistry(t *testing.T) *commands.Registry {
	t.Helper()
	r := commands.NewRegistry()
	require.NoError(t, r.Register("echo", commands.Command{
		Parameters: []commands.Param{
			{Key: "text", Default: "discipline"},
			{Key: "pattern", Default: "*", Raw: true},
			{Key: "coords", Default: []int{1, 2}, Raw: true},
		},
		Fn: func(p commands.Params) []string {
			return []string{p.String("text"), p.String("pattern"), fmt.Sprint(p["coords"])}
		},
	}))
	require.NoError(t, r.Register("failing", failingEffect{}))
	return r
}

func runContext() variables.Context {
	bindings := []variables.Binding{
		{Name: "discipline", Scope: variables.ScopePerRun, Value: "Civil"},
		{Name: "path", Scope: variables.ScopePerModel, Value: `C:\{model_name}.dwg`},
	}
	return variables.NewContext("A-01", bindings, nil)
}

func TestExecute_ResolvesDefaults(t *testing.T) {
	e := NewExecutor(echoRegistry(t))
	var out Buffer

	e.Execute(context.Background(), workflow.Node{ID: "1", Type: "echo"}, runContext(), &out, t.TempDir())

	assert.Equal(t, []string{"Civil", "*", "[1 2]"}, out.Lines())
}

func TestExecute_ResolvesNodeData(t *testing.T) {
	e := NewExecutor(echoRegistry(t))
	var out Buffer

	node := workflow.Node{ID: "1", Type: "echo", Data: map[string]interface{}{
		"text":    "{path} for {modified_variable}",
		"pattern": "{discipline}",
		"coords":  []interface{}{3.0, 4.0},
	}}
	e.Execute(context.Background(), node, runContext(), &out, t.TempDir())

	assert.Equal(t, []string{`C:\A-01.dwg for A 01`, "{discipline}", "[3 4]"}, out.Lines())
}

func TestExecute_UnknownTypeIsNoop(t *testing.T) {
	e := NewExecutor(echoRegistry(t))
	var out Buffer

	e.Execute(context.Background(), workflow.Node{ID: "1", Type: "mystery"}, runContext(), &out, t.TempDir())
	assert.Zero(t, out.Len())
}

func TestExecute_SideEffectFailureIsSwallowed(t *testing.T) {
	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.New("debug", "text", &logs))

	e := NewExecutor(echoRegistry(t))
	var out Buffer

	require.NotPanics(t, func() {
		e.Execute(ctx, workflow.Node{ID: "f", Type: "failing"}, runContext(), &out, t.TempDir())
		e.Execute(ctx, workflow.Node{ID: "e", Type: "echo"}, runContext(), &out, t.TempDir())
	})

	assert.Equal(t, []string{"after failure", "Civil", "*", "[1 2]"}, out.Lines())
	assert.Contains(t, logs.String(), "disk full")
}

func TestExecute_BuiltinSideEffect(t *testing.T) {
	dir := t.TempDir()
	e := NewExecutor(nil)
	var out Buffer

	node := workflow.Node{ID: "t", Type: commands.TypeCreateTemplateFile, Data: map[string]interface{}{
		"templateName": "{modified_variable} kerb",
	}}
	e.Execute(context.Background(), node, runContext(), &out, dir)

	_, err := os.Stat(filepath.Join(dir, "A 01 kerb.tpl"))
	assert.NoError(t, err)
	assert.Zero(t, out.Len())
}

func TestBuffer(t *testing.T) {
	var b Buffer
	b.Append("a", "b")
	b.Append("c")

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, "a\nb\nc", b.String())
}
