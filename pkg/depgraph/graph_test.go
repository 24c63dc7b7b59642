package depgraph

import (
	"reflect"
	"sort"
	"testing"

	"github.com/dd0wney/cluso-debloat/pkg/kconfig"
)

func buildTestGraph(t *testing.T) *Graph {
	t.Helper()
	opts := []kconfig.Option{
		{Name: "NET", Value: "y"},
		{Name: "WIFI", Value: "y", DependsOn: []string{"NET"}},
		{Name: "WIFI_DEBUG", Value: "y", DependsOn: []string{"WIFI"}},
		{Name: "CRYPTO", Value: "y"},
		{Name: "VPN", Value: "y", Selects: []kconfig.Select{{Target: "CRYPTO", Condition: []string{"NET"}}}},
		{Name: "FS_A", Value: "y", Choice: "ROOTFS"},
		{Name: "FS_B", Value: "n", Choice: "ROOTFS"},
	}
	choices := []kconfig.ChoiceGroup{{Name: "ROOTFS", Members: []string{"FS_A", "FS_B"}}}
	return Build(opts, choices)
}

func TestBuildNodeCount(t *testing.T) {
	g := buildTestGraph(t)

	// 7 options + 1 synthetic choice node
	if got := g.NodeCount(); got != 8 {
		t.Errorf("NodeCount = %d, want 8", got)
	}

	id, ok := g.ID(ChoiceNodePrefix + "ROOTFS")
	if !ok {
		t.Fatal("synthetic choice node missing")
	}
	if !g.IsSynthetic(id) {
		t.Error("choice node not marked synthetic")
	}
	if id, _ := g.ID("NET"); g.IsSynthetic(id) {
		t.Error("option node marked synthetic")
	}
}

func TestBuildEdgeKinds(t *testing.T) {
	g := buildTestGraph(t)

	// depends_on: NET -> WIFI
	if deps := g.Dependents("NET"); !contains(deps, "WIFI") {
		t.Errorf("NET dependents = %v, want WIFI included", deps)
	}
	// select: VPN -> CRYPTO
	if deps := g.Dependents("VPN"); !contains(deps, "CRYPTO") {
		t.Errorf("VPN dependents = %v, want CRYPTO included", deps)
	}
	// select_condition: NET -> VPN
	if deps := g.Dependents("NET"); !contains(deps, "VPN") {
		t.Errorf("NET dependents = %v, want VPN included (select condition)", deps)
	}
	// choice_member: choice:ROOTFS -> FS_A
	if deps := g.Dependents(ChoiceNodePrefix + "ROOTFS"); !contains(deps, "FS_A") || !contains(deps, "FS_B") {
		t.Errorf("choice dependents = %v, want FS_A and FS_B", deps)
	}
	// reverse direction
	if deps := g.Dependencies("WIFI_DEBUG"); !reflect.DeepEqual(deps, []string{"WIFI"}) {
		t.Errorf("WIFI_DEBUG dependencies = %v, want [WIFI]", deps)
	}
}

func TestBuildImplyEdge(t *testing.T) {
	g := Build([]kconfig.Option{
		{Name: "A", Value: "y", Implies: []kconfig.Select{{Target: "B"}}},
		{Name: "B", Value: "y"},
	}, nil)

	if deps := g.Dependents("A"); !contains(deps, "B") {
		t.Errorf("A dependents = %v, want B (imply)", deps)
	}
}

func TestSelectedByIgnoresConditions(t *testing.T) {
	g := buildTestGraph(t)

	// VPN selects CRYPTO under a condition; the veto map must still list it.
	selectors := g.SelectedBy("CRYPTO")
	if !reflect.DeepEqual(selectors, []string{"VPN"}) {
		t.Errorf("SelectedBy(CRYPTO) = %v, want [VPN]", selectors)
	}
	if got := g.SelectedBy("NET"); got != nil {
		t.Errorf("SelectedBy(NET) = %v, want nil", got)
	}
}

func TestUndeclaredDependencyBecomesNode(t *testing.T) {
	g := Build([]kconfig.Option{
		{Name: "A", Value: "y", DependsOn: []string{"PHANTOM"}},
	}, nil)

	if _, ok := g.ID("PHANTOM"); !ok {
		t.Error("undeclared dependency symbol not interned")
	}
	if deps := g.Dependents("PHANTOM"); !contains(deps, "A") {
		t.Errorf("PHANTOM dependents = %v, want A", deps)
	}
}

func TestDependentsDeduplicated(t *testing.T) {
	// B both depends on A and names A in a select condition: two edges,
	// one dependent entry.
	g := Build([]kconfig.Option{
		{Name: "A", Value: "y"},
		{Name: "B", Value: "y", DependsOn: []string{"A"}, Selects: []kconfig.Select{{Target: "C", Condition: []string{"A"}}}},
		{Name: "C", Value: "y"},
	}, nil)

	if deps := g.Dependents("A"); len(deps) != 1 || deps[0] != "B" {
		t.Errorf("A dependents = %v, want [B]", deps)
	}
}

func TestUnknownNameLookups(t *testing.T) {
	g := buildTestGraph(t)

	if id, ok := g.ID("NOPE"); ok || id != InvalidNode {
		t.Errorf("ID(NOPE) = %v, %v; want InvalidNode, false", id, ok)
	}
	if deps := g.Dependents("NOPE"); deps != nil {
		t.Errorf("Dependents(NOPE) = %v, want nil", deps)
	}
}

func TestStronglyConnectedComponents(t *testing.T) {
	g := Build([]kconfig.Option{
		{Name: "A", Value: "y", DependsOn: []string{"C"}},
		{Name: "B", Value: "y", DependsOn: []string{"A"}},
		{Name: "C", Value: "y", DependsOn: []string{"B"}},
		{Name: "LONER", Value: "y"},
	}, nil)

	sccs := g.StronglyConnectedComponents()

	var cycle []string
	singletons := 0
	for _, scc := range sccs {
		if len(scc) > 1 {
			if cycle != nil {
				t.Fatalf("Expected exactly one non-trivial SCC, got more: %v", sccs)
			}
			cycle = append([]string(nil), scc...)
		} else {
			singletons++
		}
	}

	sort.Strings(cycle)
	if !reflect.DeepEqual(cycle, []string{"A", "B", "C"}) {
		t.Errorf("cycle = %v, want [A B C]", cycle)
	}
	if singletons != 1 {
		t.Errorf("singletons = %d, want 1", singletons)
	}
}

func TestSCCTwoIndependentCycles(t *testing.T) {
	g := Build([]kconfig.Option{
		{Name: "A", Value: "y", DependsOn: []string{"B"}},
		{Name: "B", Value: "y", DependsOn: []string{"A"}},
		{Name: "X", Value: "y", Selects: []kconfig.Select{{Target: "Y"}}},
		{Name: "Y", Value: "y", Selects: []kconfig.Select{{Target: "X"}}},
	}, nil)

	cycles := 0
	for _, scc := range g.StronglyConnectedComponents() {
		if len(scc) == 2 {
			cycles++
		}
	}
	if cycles != 2 {
		t.Errorf("Expected 2 two-node SCCs, got %d", cycles)
	}
}

func TestRemovalImpact(t *testing.T) {
	g := buildTestGraph(t)

	impact := g.RemovalImpact([]string{"NET"})

	if !contains(impact.DirectlyAffected, "WIFI") {
		t.Errorf("DirectlyAffected = %v, want WIFI", impact.DirectlyAffected)
	}
	if !contains(impact.TransitivelyAffected, "WIFI_DEBUG") {
		t.Errorf("TransitivelyAffected = %v, want WIFI_DEBUG", impact.TransitivelyAffected)
	}
	if len(impact.ChoiceConflicts) != 0 {
		t.Errorf("ChoiceConflicts = %v, want none", impact.ChoiceConflicts)
	}
}

func TestRemovalImpactDanglingChoice(t *testing.T) {
	g := buildTestGraph(t)

	impact := g.RemovalImpact([]string{"FS_A", "FS_B"})
	if !reflect.DeepEqual(impact.ChoiceConflicts, []string{"ROOTFS"}) {
		t.Errorf("ChoiceConflicts = %v, want [ROOTFS]", impact.ChoiceConflicts)
	}

	// Removing only part of the group leaves it alive.
	impact = g.RemovalImpact([]string{"FS_A"})
	if len(impact.ChoiceConflicts) != 0 {
		t.Errorf("ChoiceConflicts = %v, want none for partial removal", impact.ChoiceConflicts)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
