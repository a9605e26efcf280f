package workflow

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/davidthor/chainctl/pkg/errors"
)

//go:embed graph.schema.json
var graphSchemaJSON string

var (
	graphSchemaOnce sync.Once
	graphSchema     *jsonschema.Schema
	graphSchemaErr  error
)

func compiledGraphSchema() (*jsonschema.Schema, error) {
	graphSchemaOnce.Do(func() {
		graphSchema, graphSchemaErr = jsonschema.CompileString("graph.schema.json", graphSchemaJSON)
	})
	return graphSchema, graphSchemaErr
}

// LoadFile reads and validates a workflow graph document (JSON or YAML).
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		if errors.Is(err, errors.ErrCodeValidation) {
			return nil, err
		}
		return nil, errors.ParseError(path, err)
	}
	return g, nil
}

// Parse decodes and validates a workflow graph document. YAML is a superset of
// JSON, so both encodings go through the YAML decoder.
func Parse(data []byte) (*Graph, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse graph document: %w", err)
	}

	doc, err := toJSONValue(raw)
	if err != nil {
		return nil, err
	}
	normalizeIDs(doc)

	if err := Validate(doc); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph document: %w", err)
	}
	var g Graph
	if err := json.Unmarshal(encoded, &g); err != nil {
		return nil, fmt.Errorf("failed to decode graph document: %w", err)
	}
	return &g, nil
}

// Validate checks a decoded graph document against the graph schema.
func Validate(doc interface{}) error {
	schema, err := compiledGraphSchema()
	if err != nil {
		return fmt.Errorf("failed to compile graph schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		var problems []string
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			problems = flattenValidation(ve)
		} else {
			problems = append(problems, err.Error())
		}
		return errors.ValidationError("graph document is invalid", problems)
	}
	return nil
}

func flattenValidation(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, ve.Message)}
	}
	var out []string
	for _, c := range ve.Causes {
		out = append(out, flattenValidation(c)...)
	}
	return out
}

// toJSONValue round-trips a YAML value through encoding/json so that the
// schema validator sees the same value types it would for a JSON document.
func toJSONValue(raw interface{}) (interface{}, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("graph document is not JSON compatible: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode graph document: %w", err)
	}
	return doc, nil
}

// normalizeIDs rewrites numeric ids, edge endpoints and selected model names
// as strings.
func normalizeIDs(doc interface{}) {
	root, ok := doc.(map[string]interface{})
	if !ok {
		return
	}
	fix := func(items interface{}, keys ...string) {
		list, ok := items.([]interface{})
		if !ok {
			return
		}
		for _, item := range list {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			for _, k := range keys {
				if f, ok := m[k].(float64); ok {
					m[k] = strconv.FormatFloat(f, 'f', -1, 64)
				}
			}
		}
	}
	fix(root["nodes"], "id")
	fix(root["edges"], "id", "source", "target")

	if names, ok := root["selectedModelNames"].([]interface{}); ok {
		for i, name := range names {
			if f, ok := name.(float64); ok {
				names[i] = strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
	}
}
