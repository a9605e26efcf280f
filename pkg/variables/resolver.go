package variables

import (
	"fmt"
	"regexp"
	"strings"
)

// Builtin identifiers derived from the current model.
const (
	BuiltinModelName        = "model_name"
	BuiltinModifiedVariable = "modified_variable"
	BuiltinVariable         = "variable"
	BuiltinOptionsExt       = "options_ext"
)

// ModelPlaceholder is substituted with the model identifier inside per-model
// binding values before they are resolved.
const ModelPlaceholder = "{" + BuiltinModelName + "}"

// markerPattern matches non-nested {token} markers.
var markerPattern = regexp.MustCompile(`\{([^{}]+)\}`)

var optionsPattern = regexp.MustCompile(`-0([0-5])-`)

// Context is the resolution scope for one model: the batch bindings, the
// per-run values derived from them, the model identifier and the attributes
// of its table row. A Context is built fresh for every model and never
// shared between models.
type Context struct {
	Model      string
	Bindings   []Binding
	RunVars    map[string]string
	Attributes map[string]string
}

// NewContext creates a resolution context for a model.
func NewContext(model string, bindings []Binding, runVars map[string]string) Context {
	if runVars == nil {
		runVars = RunVars(bindings)
	}
	return Context{
		Model:    model,
		Bindings: bindings,
		RunVars:  runVars,
	}
}

// WithAttributes returns a copy of c that also resolves the model's table
// row attributes. Bindings take precedence over attributes.
func (c Context) WithAttributes(attrs map[string]string) Context {
	c.Attributes = attrs
	return c
}

// Resolve resolves a token or template in this context.
func (c Context) Resolve(token string) string {
	r := resolver{model: c.Model, bindings: c.Bindings, runVars: c.RunVars, attrs: c.Attributes}
	return r.resolve(token, nil)
}

// Resolve resolves a direct variable name or a template containing {token}
// markers. Unknown names are returned unchanged and unresolvable markers are
// left in place.
func Resolve(token, model string, bindings []Binding, runVars map[string]string) string {
	r := resolver{model: model, bindings: bindings, runVars: runVars}
	return r.resolve(token, nil)
}

// DisplayName returns the display form of a model identifier, with hyphens
// replaced by spaces.
func DisplayName(model string) string {
	return strings.ReplaceAll(model, "-", " ")
}

// OptionsExt derives the option suffix from "-0N-" markers in a model name.
// "-00-" yields an empty suffix.
func OptionsExt(model string) string {
	m := optionsPattern.FindStringSubmatch(model)
	if m == nil || m[1] == "0" {
		return ""
	}
	return fmt.Sprintf("Opt 0%s", m[1])
}

// HasMarkers reports whether s contains at least one {token} marker.
func HasMarkers(s string) bool {
	return markerPattern.MatchString(s)
}

// visited is an immutable set of names on the current resolution path.
type visited struct {
	name   string
	parent *visited
}

func (v *visited) contains(name string) bool {
	for cur := v; cur != nil; cur = cur.parent {
		if cur.name == name {
			return true
		}
	}
	return false
}

func (v *visited) with(name string) *visited {
	return &visited{name: name, parent: v}
}

type resolver struct {
	model    string
	bindings []Binding
	runVars  map[string]string
	attrs    map[string]string
}

func (r resolver) resolve(token string, seen *visited) string {
	if HasMarkers(token) {
		return r.template(token, seen)
	}
	value, _ := r.name(token, seen)
	return value
}

func (r resolver) template(tmpl string, seen *visited) string {
	return markerPattern.ReplaceAllStringFunc(tmpl, func(marker string) string {
		inner := strings.TrimSpace(marker[1 : len(marker)-1])
		if value, ok := r.name(inner, seen); ok {
			return value
		}
		return marker
	})
}

// name resolves a direct name. The boolean is false when nothing matched and
// the name was returned as a literal.
func (r resolver) name(name string, seen *visited) (string, bool) {
	if seen.contains(name) {
		return name, false
	}

	if value, ok := r.runVars[name]; ok {
		return value, true
	}

	if b, ok := Lookup(r.bindings, name); ok {
		if s, isString := b.Value.(string); isString && b.Scope == ScopePerModel {
			s = strings.ReplaceAll(s, ModelPlaceholder, r.model)
			return r.resolve(s, seen.with(name)), true
		}
		return stringify(b.Value), true
	}

	if value, ok := r.attrs[name]; ok {
		return value, true
	}

	switch name {
	case BuiltinModelName, BuiltinVariable:
		return r.model, true
	case BuiltinModifiedVariable:
		return DisplayName(r.model), true
	case BuiltinOptionsExt:
		return OptionsExt(r.model), true
	}

	return name, false
}
