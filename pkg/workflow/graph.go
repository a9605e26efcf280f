package workflow

// Graph is a workflow document: nodes, edges and an optional subset of model
// names the run is restricted to.
type Graph struct {
	Nodes              []Node   `json:"nodes" yaml:"nodes"`
	Edges              []Edge   `json:"edges" yaml:"edges"`
	SelectedModelNames []string `json:"selectedModelNames,omitempty" yaml:"selectedModelNames,omitempty"`
}

// GetNode returns the first node with the given ID.
func (g *Graph) GetNode(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.GetNode(id)
	return ok
}

// FirstOfType returns the first node, in declaration order, of the given type.
func (g *Graph) FirstOfType(t NodeType) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Type == t {
			return n, true
		}
	}
	return Node{}, false
}

// NodesByType returns all nodes of a specific type in declaration order.
func (g *Graph) NodesByType(t NodeType) []Node {
	var nodes []Node
	for _, n := range g.Nodes {
		if n.Type == t {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// FlowEdges returns the edges that sequence control flow.
func (g *Graph) FlowEdges() []Edge {
	var edges []Edge
	for _, e := range g.Edges {
		if e.IsFlow() {
			edges = append(edges, e)
		}
	}
	return edges
}

// OutputNode returns the chain output sink, if any.
func (g *Graph) OutputNode() (Node, bool) {
	return g.FirstOfType(NodeTypeChainFileOutput)
}
