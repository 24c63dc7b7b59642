// Package kconfig defines the narrow boundary to the configuration model:
// the option/choice/menu data the debloater consumes, plus an in-memory
// model implementation. Parsing and evaluating the configuration language
// itself happens outside this module; the model arrives here as data.
package kconfig

import (
	"context"
)

// Yes and No are the two boolean option values the debloater cares about.
// Any value other than No counts as enabled; string and numeric options
// carry their literal value.
const (
	Yes = "y"
	No  = "n"
)

// Select is a select or imply clause: the target option forced (or hinted)
// on, plus the non-constant symbols of the clause's condition expression.
type Select struct {
	Target    string   `json:"target"`
	Condition []string `json:"condition,omitempty"`
}

// Option describes one configuration symbol as reported by the model.
type Option struct {
	Name string `json:"name"`
	// Value is the current value; No means disabled.
	Value string `json:"value"`
	// DependsOn lists the non-constant symbols appearing in the option's
	// direct dependency expression.
	DependsOn []string `json:"depends_on,omitempty"`
	Selects   []Select `json:"selects,omitempty"`
	Implies   []Select `json:"implies,omitempty"`
	// Choice names the owning choice group, empty if the option is not a
	// choice member.
	Choice string `json:"choice,omitempty"`
}

// Enabled reports whether the option currently holds a non-No value.
func (o Option) Enabled() bool {
	return o.Value != No && o.Value != ""
}

// ChoiceGroup is a set of mutually exclusive options.
type ChoiceGroup struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Menu is one node of the menu/subsystem hierarchy.
type Menu struct {
	Title    string   `json:"title"`
	Symbols  []string `json:"symbols,omitempty"`
	Submenus []Menu   `json:"submenus,omitempty"`
}

// Model is the configuration-model collaborator. Implementations expose a
// fixed snapshot of the option space and the ability to recompute derived
// values for a forced value set.
type Model interface {
	// Options enumerates all defined options in declaration order.
	Options() []Option

	// Choices enumerates all choice groups.
	Choices() []ChoiceGroup

	// Menus returns the top-level menu hierarchy.
	Menus() []Menu

	// Values returns the current option->value mapping, including disabled
	// options.
	Values() map[string]string

	// Eval performs a fresh evaluation: forced values are applied on top of
	// the snapshot and all derived values are recomputed. The returned map
	// holds the final value of every defined option. Forced names unknown
	// to the model are ignored.
	Eval(forced map[string]string) (map[string]string, error)

	// Render serializes the given value set to the model's native textual
	// configuration format.
	Render(values map[string]string) []byte

	// Normalize re-normalizes the on-disk configuration in buildDir against
	// the model's own consistency rules (the olddefconfig step).
	Normalize(ctx context.Context, buildDir string) error
}
