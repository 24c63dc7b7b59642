package depgraph

import (
	"github.com/dd0wney/cluso-debloat/pkg/kconfig"
)

// ChoiceNodePrefix namespaces synthetic choice nodes away from option names.
const ChoiceNodePrefix = "choice:"

// Build constructs the dependency graph from a model snapshot. For every
// option it adds: a depends_on edge from each symbol of its dependency
// expression, a select edge to each select target plus select_condition
// edges from the condition symbols, an imply edge to each imply target, and
// a choice_member edge from the owning choice group's synthetic node. It
// also builds the reverse selected-by map, with select conditions ignored.
func Build(opts []kconfig.Option, choices []kconfig.ChoiceGroup) *Graph {
	g := &Graph{
		ids:           make(map[string]NodeID, len(opts)+len(choices)),
		selectedBy:    make(map[string][]string),
		choiceMembers: make(map[string][]string, len(choices)),
	}

	// Options first, in declaration order, then the synthetic choice nodes.
	for _, o := range opts {
		g.intern(o.Name, false)
	}
	for _, c := range choices {
		g.intern(ChoiceNodePrefix+c.Name, true)
		members := make([]string, len(c.Members))
		copy(members, c.Members)
		g.choiceMembers[c.Name] = members
	}

	for _, o := range opts {
		for _, dep := range o.DependsOn {
			g.addEdge(dep, o.Name, EdgeDependsOn)
		}
		for _, s := range o.Selects {
			g.addEdge(o.Name, s.Target, EdgeSelect)
			for _, cond := range s.Condition {
				g.addEdge(cond, o.Name, EdgeSelectCondition)
			}
			g.addSelector(s.Target, o.Name)
		}
		for _, s := range o.Implies {
			g.addEdge(o.Name, s.Target, EdgeImply)
		}
		if o.Choice != "" {
			g.addEdge(ChoiceNodePrefix+o.Choice, o.Name, EdgeChoiceMember)
		}
	}

	return g
}

// intern returns the handle for a name, creating the node if needed.
// Dependency expressions may reference symbols the snapshot does not
// declare; those become plain nodes on first sight.
func (g *Graph) intern(name string, synthetic bool) NodeID {
	if id, ok := g.ids[name]; ok {
		return id
	}
	id := NodeID(len(g.names))
	g.ids[name] = id
	g.names = append(g.names, name)
	g.synthetic = append(g.synthetic, synthetic)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id
}

func (g *Graph) addEdge(from, to string, kind EdgeKind) {
	f := g.intern(from, false)
	t := g.intern(to, false)
	g.out[f] = append(g.out[f], edge{to: t, kind: kind})
	g.in[t] = append(g.in[t], edge{to: f, kind: kind})
}

func (g *Graph) addSelector(target, selector string) {
	for _, s := range g.selectedBy[target] {
		if s == selector {
			return
		}
	}
	g.selectedBy[target] = append(g.selectedBy[target], selector)
}
