// Package workflow models the node/edge graph documents authored in the
// workflow editor.
package workflow

import (
	"fmt"
	"strings"
)

// NodeType identifies the type of a workflow node.
type NodeType string

// Structural node types organise the batch but never emit chain text.
const (
	NodeTypeForeachModel    NodeType = "foreachModel"
	NodeTypeChainFileOutput NodeType = "chainFileOutput"
	NodeTypeExcelModels     NodeType = "excelModels"
	NodeTypeSetVariable     NodeType = "setVariable"
)

// IsStructural returns true for node types that carry no generator.
func IsStructural(t NodeType) bool {
	switch t {
	case NodeTypeForeachModel, NodeTypeChainFileOutput, NodeTypeExcelModels, NodeTypeSetVariable:
		return true
	default:
		return false
	}
}

// Node is a single step of the workflow graph.
type Node struct {
	ID   string                 `json:"id" yaml:"id"`
	Type NodeType               `json:"type" yaml:"type"`
	Data map[string]interface{} `json:"data,omitempty" yaml:"data,omitempty"`
}

// String returns the value stored under key when it is a string.
func (n Node) String(key string) (string, bool) {
	v, ok := n.Data[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringOr returns the string stored under key, or fallback when absent.
func (n Node) StringOr(key, fallback string) string {
	if s, ok := n.String(key); ok && s != "" {
		return s
	}
	return fallback
}

// Label returns a human readable label for the node.
func (n Node) Label() string {
	if label, ok := n.String("label"); ok && label != "" {
		return label
	}
	return fmt.Sprintf("%s (%s)", n.ID, n.Type)
}

// Edge connects two nodes. Handles carry an optional namespace such as
// "flow:out" or "param:discipline".
type Edge struct {
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// IsFlow reports whether the edge sequences control flow. Handles without a
// namespace are treated as flow handles for older graphs.
func (e Edge) IsFlow() bool {
	return isFlowHandle(e.SourceHandle) && isFlowHandle(e.TargetHandle)
}

func isFlowHandle(handle string) bool {
	if handle == "" || strings.HasPrefix(handle, "flow:") {
		return true
	}
	return !strings.Contains(handle, ":")
}
