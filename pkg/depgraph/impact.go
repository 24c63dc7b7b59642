package depgraph

import "sort"

// Impact describes what a removal set would drag along.
type Impact struct {
	// DirectlyAffected are the immediate dependents of the removed symbols.
	DirectlyAffected []string
	// TransitivelyAffected is the closure of DirectlyAffected over the
	// dependent relation.
	TransitivelyAffected []string
	// ChoiceConflicts lists choice groups whose every member is in the
	// removal set: removing all members leaves a dangling choice and must
	// be flagged.
	ChoiceConflicts []string
}

// RemovalImpact computes the blast radius of disabling the given symbols.
// The closure walks an explicit worklist, so arbitrarily deep dependency
// chains cannot overflow the stack.
func (g *Graph) RemovalImpact(symbols []string) Impact {
	removed := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		removed[s] = struct{}{}
	}

	direct := make(map[string]struct{})
	for _, s := range symbols {
		for _, dep := range g.Dependents(s) {
			direct[dep] = struct{}{}
		}
	}

	var conflicts []string
	for name, members := range g.choiceMembers {
		if len(members) == 0 {
			continue
		}
		dangling := true
		for _, m := range members {
			if _, gone := removed[m]; !gone {
				dangling = false
				break
			}
		}
		if dangling {
			conflicts = append(conflicts, name)
		}
	}

	all := make(map[string]struct{}, len(direct))
	worklist := make([]string, 0, len(direct))
	for name := range direct {
		all[name] = struct{}{}
		worklist = append(worklist, name)
	}
	for len(worklist) > 0 {
		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, dep := range g.Dependents(current) {
			if _, seen := all[dep]; seen {
				continue
			}
			all[dep] = struct{}{}
			worklist = append(worklist, dep)
		}
	}

	return Impact{
		DirectlyAffected:     sortedKeys(direct),
		TransitivelyAffected: sortedKeys(all),
		ChoiceConflicts:      sortedSlice(conflicts),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func sortedSlice(in []string) []string {
	sort.Strings(in)
	return in
}
