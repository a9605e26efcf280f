package variables

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/davidthor/chainctl/pkg/errors"
)

// LoadFile reads a bindings document. Files ending in .hcl are parsed as HCL
// variable blocks; everything else as a JSON or YAML list.
func LoadFile(path string) ([]Binding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bindings file: %w", err)
	}

	var bindings []Binding
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		bindings, err = ParseHCL(data, path)
	} else {
		bindings, err = Parse(data)
	}
	if err != nil {
		if errors.Is(err, errors.ErrCodeValidation) {
			return nil, err
		}
		return nil, errors.ParseError(path, err)
	}
	return bindings, nil
}

// Parse decodes a JSON or YAML list of {name, scope, value} entries. A
// top-level object with a "variables" key is accepted as well.
func Parse(data []byte) ([]Binding, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse bindings document: %w", err)
	}
	if m, ok := raw.(map[string]interface{}); ok {
		raw = m["variables"]
	}
	if raw == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("bindings document is not JSON compatible: %w", err)
	}
	var bindings []Binding
	if err := json.Unmarshal(encoded, &bindings); err != nil {
		return nil, fmt.Errorf("failed to decode bindings: %w", err)
	}

	if err := Validate(bindings); err != nil {
		return nil, err
	}
	return bindings, nil
}

// Validate checks names and scopes.
func Validate(bindings []Binding) error {
	var problems []string
	for i, b := range bindings {
		if b.Name == "" {
			problems = append(problems, fmt.Sprintf("variables[%d]: name is required", i))
		}
		switch b.Scope {
		case ScopePerRun, ScopePerModel:
		default:
			problems = append(problems, fmt.Sprintf("variables[%d] %q: scope must be %q or %q, got %q",
				i, b.Name, ScopePerRun, ScopePerModel, b.Scope))
		}
	}
	if len(problems) > 0 {
		return errors.ValidationError("bindings document is invalid", problems)
	}
	return nil
}

// ParseHCL decodes variable blocks:
//
//	variable "discipline" {
//	  scope = "per-run"
//	  value = "Civil"
//	}
func ParseHCL(data []byte, filename string) ([]Binding, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	content, diags := file.Body.Content(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "variable", LabelNames: []string{"name"}},
		},
	})
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid bindings file: %s", diags.Error())
	}

	var bindings []Binding
	for _, block := range content.Blocks.OfType("variable") {
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("variable %q: %s", block.Labels[0], diags.Error())
		}

		b := Binding{Name: block.Labels[0], Scope: ScopePerRun}
		if attr, ok := attrs["scope"]; ok {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("variable %q scope: %s", b.Name, diags.Error())
			}
			if val.Type() != cty.String || val.IsNull() {
				return nil, fmt.Errorf("variable %q scope must be a string", b.Name)
			}
			b.Scope = Scope(val.AsString())
		}
		if attr, ok := attrs["value"]; ok {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("variable %q value: %s", b.Name, diags.Error())
			}
			b.Value = ctyToGo(val)
		}
		bindings = append(bindings, b)
	}

	if err := Validate(bindings); err != nil {
		return nil, err
	}
	return bindings, nil
}

// ctyToGo converts primitive cty values; other values are rendered as strings.
func ctyToGo(val cty.Value) interface{} {
	if val.IsNull() || !val.IsKnown() {
		return nil
	}
	switch val.Type() {
	case cty.String:
		return val.AsString()
	case cty.Bool:
		return val.True()
	case cty.Number:
		bf := val.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
		f, _ := bf.Float64()
		return f
	default:
		return val.GoString()
	}
}
