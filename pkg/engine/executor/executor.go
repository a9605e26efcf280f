// Package executor runs a single workflow node for one model.
package executor

import (
	"context"
	"strings"

	"github.com/davidthor/chainctl/pkg/commands"
	"github.com/davidthor/chainctl/pkg/ctxlog"
	"github.com/davidthor/chainctl/pkg/variables"
	"github.com/davidthor/chainctl/pkg/workflow"
)

// Buffer accumulates the chain lines of one model.
type Buffer struct {
	lines []string
}

// Append adds lines to the buffer.
func (b *Buffer) Append(lines ...string) {
	b.lines = append(b.lines, lines...)
}

// Lines returns the accumulated lines.
func (b *Buffer) Lines() []string {
	return b.lines
}

// Len returns the number of lines.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// String joins the lines with "\n".
func (b *Buffer) String() string {
	return strings.Join(b.lines, "\n")
}

// Executor dispatches nodes to their registered generators.
type Executor struct {
	registry *commands.Registry
}

// NewExecutor creates an executor. A nil registry uses the built-in one.
func NewExecutor(registry *commands.Registry) *Executor {
	if registry == nil {
		registry = commands.Default()
	}
	return &Executor{registry: registry}
}

// Execute resolves the node's parameters for the model in rc, appends the
// generated lines to out and applies any side effect under outputDir.
// Side-effect failures are logged and never returned. Unknown node types are
// skipped.
func (e *Executor) Execute(ctx context.Context, node workflow.Node, rc variables.Context, out *Buffer, outputDir string) {
	logger := ctxlog.FromContext(ctx).With("node", node.ID, "type", string(node.Type), "model", rc.Model)

	gen, ok := e.registry.Get(node.Type)
	if !ok {
		logger.Debug("no generator registered, skipping node")
		return
	}

	params := ResolveParams(node, gen.Params(), rc)

	if se, ok := gen.(commands.SideEffect); ok {
		if err := se.Apply(ctx, params, outputDir); err != nil {
			logger.Warn("node side effect failed", "error", err)
		}
	}

	lines := gen.Generate(params)
	out.Append(lines...)
	logger.Debug("node executed", "lines", len(lines))
}

// ResolveParams reads each declared parameter from the node data, falling
// back to its default, and resolves string values through rc. Raw and
// non-string values are passed through unchanged.
func ResolveParams(node workflow.Node, decl []commands.Param, rc variables.Context) commands.Params {
	params := make(commands.Params, len(decl))
	for _, p := range decl {
		value, present := node.Data[p.Key]
		if !present || value == nil {
			value = p.Default
		}
		if s, isString := value.(string); isString && !p.Raw {
			value = rc.Resolve(s)
		}
		params[p.Key] = value
	}
	return params
}
