// Package commands holds the chain command generators, keyed by workflow node
// type.
package commands

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/davidthor/chainctl/pkg/workflow"
)

// Param declares one input of a node type.
type Param struct {
	// Key is the data key read from the node.
	Key string

	// Default is used when the key is absent. String defaults are variable
	// names or templates and are resolved like node data.
	Default interface{}

	// Raw params are passed through untouched (patterns, coordinates, flags).
	Raw bool

	// Description is shown by `chainctl nodes`.
	Description string
}

// Generator turns resolved parameters into chain lines. Implementations must
// be pure.
type Generator interface {
	Params() []Param
	Generate(p Params) []string
}

// SideEffect is implemented by generators that also write auxiliary files
// under the output directory.
type SideEffect interface {
	Apply(ctx context.Context, p Params, outputDir string) error
}

// Describer is implemented by generators that carry a human readable summary.
type Describer interface {
	Description() string
}

// Registry maps node types to generators.
type Registry struct {
	mu         sync.RWMutex
	generators map[workflow.NodeType]Generator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[workflow.NodeType]Generator),
	}
}

// Register adds a generator. Structural types and duplicates are rejected.
func (r *Registry) Register(t workflow.NodeType, g Generator) error {
	if t == "" {
		return fmt.Errorf("node type is required")
	}
	if workflow.IsStructural(t) {
		return fmt.Errorf("node type %q is structural and cannot have a generator", t)
	}
	if g == nil {
		return fmt.Errorf("generator for %q is nil", t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[t]; exists {
		return fmt.Errorf("node type %q already registered", t)
	}
	r.generators[t] = g
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(t workflow.NodeType, g Generator) {
	if err := r.Register(t, g); err != nil {
		panic(err)
	}
}

// Get returns the generator for a node type.
func (r *Registry) Get(t workflow.NodeType) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[t]
	return g, ok
}

// Types returns the registered node types, sorted.
func (r *Registry) Types() []workflow.NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]workflow.NodeType, 0, len(r.generators))
	for t := range r.generators {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Command adapts a plain function into a Generator.
type Command struct {
	Summary    string
	Parameters []Param
	Fn         func(p Params) []string
}

// Params implements Generator.
func (c Command) Params() []Param { return c.Parameters }

// Generate implements Generator.
func (c Command) Generate(p Params) []string {
	if c.Fn == nil {
		return nil
	}
	return c.Fn(p)
}

// Description implements Describer.
func (c Command) Description() string { return c.Summary }

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry populated with the built-in node types.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}
