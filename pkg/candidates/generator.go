// Package candidates derives removal-candidate groups from the dependency
// graph: leaves first, then dependency cycles, then whole subsystems. The
// generator never consults validation; it only proposes units the search
// engine can try.
package candidates

import (
	"fmt"

	"github.com/dd0wney/cluso-debloat/pkg/depgraph"
	"github.com/dd0wney/cluso-debloat/pkg/kconfig"
)

// Group is one removal unit: a named set of option names that are disabled
// together.
type Group struct {
	Name    string
	Members []string
}

// Generate produces the candidate groups in tiered order: leaf groups
// (enabled options nothing depends on, the safest removals), cycle groups
// (each non-trivial SCC as one atomic unit), then subsystem groups (all
// symbols under each top-level menu). Order within a tier follows
// declaration order and is stable across runs.
func Generate(model kconfig.Model, g *depgraph.Graph) []Group {
	var groups []Group
	groups = append(groups, leafGroups(model, g)...)
	groups = append(groups, cycleGroups(g)...)
	groups = append(groups, menuGroups(model)...)
	return groups
}

func leafGroups(model kconfig.Model, g *depgraph.Graph) []Group {
	var groups []Group
	for _, opt := range model.Options() {
		if !opt.Enabled() {
			continue
		}
		if len(g.Dependents(opt.Name)) != 0 {
			continue
		}
		groups = append(groups, Group{
			Name:    "leaf_" + opt.Name,
			Members: []string{opt.Name},
		})
	}
	return groups
}

// cycleGroups emits each SCC of size > 1 as one atomic group. A dependency
// cycle is removed or kept whole; disabling part of it leaves an
// inconsistent subset.
func cycleGroups(g *depgraph.Graph) []Group {
	var groups []Group
	for _, scc := range g.StronglyConnectedComponents() {
		if len(scc) <= 1 {
			continue
		}
		groups = append(groups, Group{
			Name:    fmt.Sprintf("scc_%d", len(groups)),
			Members: scc,
		})
	}
	return groups
}

// menuGroups collects, for every top-level menu, the full recursive set of
// member symbols. The traversal uses an explicit work stack so arbitrarily
// deep menu nesting cannot overflow the call stack.
func menuGroups(model kconfig.Model) []Group {
	var groups []Group
	for _, menu := range model.Menus() {
		members := collectMenuSymbols(menu)
		if len(members) <= 1 {
			continue
		}
		groups = append(groups, Group{
			Name:    "menu_" + menu.Title,
			Members: members,
		})
	}
	return groups
}

func collectMenuSymbols(root kconfig.Menu) []string {
	seen := make(map[string]struct{})
	var members []string
	stack := []kconfig.Menu{root}
	for len(stack) > 0 {
		menu := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, sym := range menu.Symbols {
			if _, dup := seen[sym]; dup {
				continue
			}
			seen[sym] = struct{}{}
			members = append(members, sym)
		}
		// Push submenus in reverse so they pop in declaration order.
		for i := len(menu.Submenus) - 1; i >= 0; i-- {
			stack = append(stack, menu.Submenus[i])
		}
	}
	return members
}
