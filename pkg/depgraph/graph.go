// Package depgraph builds and queries the directed graph of option
// relationships the search engine steers by. The graph is constructed once
// from a fixed model snapshot and is read-only afterwards.
package depgraph

// NodeID is an interned handle for an option or synthetic choice node.
// Integer handles keep the hot lookup paths off string keys.
type NodeID int32

// InvalidNode is returned for names the graph does not contain.
const InvalidNode NodeID = -1

// EdgeKind tags the relation an edge was derived from.
type EdgeKind uint8

const (
	// EdgeDependsOn: prerequisite -> dependent, from the dependent's direct
	// dependency expression.
	EdgeDependsOn EdgeKind = iota
	// EdgeSelect: selector -> selected target.
	EdgeSelect
	// EdgeSelectCondition: condition symbol -> selector.
	EdgeSelectCondition
	// EdgeImply: implier -> implied target.
	EdgeImply
	// EdgeChoiceMember: synthetic choice node -> member.
	EdgeChoiceMember
)

// String returns the relation name an edge kind was derived from.
func (k EdgeKind) String() string {
	switch k {
	case EdgeDependsOn:
		return "depends_on"
	case EdgeSelect:
		return "select"
	case EdgeSelectCondition:
		return "select_condition"
	case EdgeImply:
		return "imply"
	case EdgeChoiceMember:
		return "choice_member"
	default:
		return "unknown"
	}
}

type edge struct {
	to   NodeID
	kind EdgeKind
}

// Graph is the dependency graph: one node per option plus one synthetic
// node per choice group. Built by Build and immutable afterwards.
type Graph struct {
	names     []string
	ids       map[string]NodeID
	synthetic []bool
	out       [][]edge
	in        [][]edge

	selectedBy    map[string][]string
	choiceMembers map[string][]string
}

// NodeCount returns the number of nodes, including synthetic choice nodes.
func (g *Graph) NodeCount() int {
	return len(g.names)
}

// EdgeCount returns the total number of directed edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.out {
		n += len(edges)
	}
	return n
}

// ID returns the interned handle for a node name.
func (g *Graph) ID(name string) (NodeID, bool) {
	id, ok := g.ids[name]
	if !ok {
		return InvalidNode, false
	}
	return id, true
}

// Name returns the name for an interned handle.
func (g *Graph) Name(id NodeID) string {
	return g.names[id]
}

// IsSynthetic reports whether the node is a synthetic choice-group node.
func (g *Graph) IsSynthetic(id NodeID) bool {
	return g.synthetic[id]
}

// Dependents returns the unique successor names of the given node: every
// node reachable over one outgoing edge of any kind. Unknown names yield
// an empty slice.
func (g *Graph) Dependents(name string) []string {
	id, ok := g.ids[name]
	if !ok {
		return nil
	}
	return g.neighborNames(g.out[id])
}

// Dependencies returns the unique predecessor names of the given node.
func (g *Graph) Dependencies(name string) []string {
	id, ok := g.ids[name]
	if !ok {
		return nil
	}
	return g.neighborNames(g.in[id])
}

// SelectedBy returns the options whose select clause names the given
// target. Select conditions are ignored here: the map is a conservative
// veto, not an evaluation.
func (g *Graph) SelectedBy(name string) []string {
	return g.selectedBy[name]
}

// SelectorMap returns a copy of the full target -> selectors index.
func (g *Graph) SelectorMap() map[string][]string {
	out := make(map[string][]string, len(g.selectedBy))
	for target, selectors := range g.selectedBy {
		out[target] = append([]string(nil), selectors...)
	}
	return out
}

func (g *Graph) neighborNames(edges []edge) []string {
	if len(edges) == 0 {
		return nil
	}
	seen := make(map[NodeID]struct{}, len(edges))
	names := make([]string, 0, len(edges))
	for _, e := range edges {
		if _, dup := seen[e.to]; dup {
			continue
		}
		seen[e.to] = struct{}{}
		names = append(names, g.names[e.to])
	}
	return names
}
