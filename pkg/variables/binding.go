// Package variables resolves symbolic variable references used in workflow
// node parameters.
package variables

import "fmt"

// Scope identifies the lifetime of a binding.
type Scope string

const (
	// ScopePerRun bindings are constant across every model in a batch.
	ScopePerRun Scope = "per-run"
	// ScopePerModel bindings are re-evaluated for each model.
	ScopePerModel Scope = "per-model"
)

// Binding associates a variable name with a value.
type Binding struct {
	Name  string      `json:"name" yaml:"name"`
	Scope Scope       `json:"scope" yaml:"scope"`
	Value interface{} `json:"value" yaml:"value"`
}

// RunVars extracts the per-run bindings as a name to string map. When a name
// is bound more than once, the last definition wins.
func RunVars(bindings []Binding) map[string]string {
	vars := make(map[string]string)
	for _, b := range bindings {
		if b.Scope == ScopePerRun {
			vars[b.Name] = stringify(b.Value)
		}
	}
	return vars
}

// Lookup returns the last binding with the given name.
func Lookup(bindings []Binding, name string) (Binding, bool) {
	for i := len(bindings) - 1; i >= 0; i-- {
		if bindings[i].Name == name {
			return bindings[i], true
		}
	}
	return Binding{}, false
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
