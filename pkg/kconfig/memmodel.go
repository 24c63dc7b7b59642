package kconfig

import (
	"bytes"
	"context"
	"fmt"
	"sort"
)

// DefaultPrefix is the symbol prefix used in the native config format.
const DefaultPrefix = "CONFIG_"

// MemModel is an in-memory Model. It implements only the subset of
// configuration-language semantics the debloater observes: forced values,
// select propagation, and dependency-driven disabling. It is not a full
// evaluator; production runs feed it a snapshot exported by the real
// configuration toolchain.
type MemModel struct {
	opts    []Option
	index   map[string]int
	choices []ChoiceGroup
	menus   []Menu
	values  map[string]string

	// Prefix is prepended to symbol names in the native format.
	Prefix string

	// EvalHook, if non-nil, runs after forced values are applied and before
	// select/dependency propagation. Tests use it to model default
	// recomputation the simplified semantics cannot express.
	EvalHook func(values map[string]string)
}

// NewMemModel builds a model from a fixed option snapshot.
func NewMemModel(opts []Option, choices []ChoiceGroup, menus []Menu) *MemModel {
	m := &MemModel{
		opts:    opts,
		index:   make(map[string]int, len(opts)),
		choices: choices,
		menus:   menus,
		values:  make(map[string]string, len(opts)),
		Prefix:  DefaultPrefix,
	}
	for i, o := range opts {
		m.index[o.Name] = i
		if o.Value == "" {
			m.values[o.Name] = No
		} else {
			m.values[o.Name] = o.Value
		}
	}
	return m
}

// Options returns the defined options in declaration order.
func (m *MemModel) Options() []Option {
	out := make([]Option, len(m.opts))
	copy(out, m.opts)
	return out
}

// Choices returns all choice groups.
func (m *MemModel) Choices() []ChoiceGroup {
	out := make([]ChoiceGroup, len(m.choices))
	copy(out, m.choices)
	return out
}

// Menus returns the top-level menu hierarchy.
func (m *MemModel) Menus() []Menu {
	out := make([]Menu, len(m.menus))
	copy(out, m.menus)
	return out
}

// Values returns a copy of the current value set.
func (m *MemModel) Values() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// ApplyConfig overlays a value set onto the model's current values, e.g.
// a parsed base configuration file. Unknown names are ignored.
func (m *MemModel) ApplyConfig(values map[string]string) {
	for name, val := range values {
		if _, ok := m.index[name]; ok {
			m.values[name] = val
		}
	}
}

// Eval applies forced values on a copy of the snapshot and propagates the
// simplified semantics to a fixed point: an enabled option selects its
// targets on (condition symbols must all be enabled), and an option with an
// unsatisfied dependency drops to No unless something selects it.
func (m *MemModel) Eval(forced map[string]string) (map[string]string, error) {
	out := m.Values()
	for name, val := range forced {
		if _, ok := m.index[name]; ok {
			out[name] = val
		}
	}

	if m.EvalHook != nil {
		m.EvalHook(out)
	}

	// Each pass can only flip values toward the fixed point; the option
	// count bounds the number of passes needed.
	for pass := 0; pass <= len(m.opts); pass++ {
		selected := make(map[string]bool)
		for _, o := range m.opts {
			if out[o.Name] == No {
				continue
			}
			for _, s := range o.Selects {
				if allEnabled(out, s.Condition) {
					selected[s.Target] = true
				}
			}
		}

		changed := false
		for _, o := range m.opts {
			cur := out[o.Name]
			want := cur
			switch {
			case selected[o.Name] && cur == No:
				want = Yes
			case !selected[o.Name] && cur != No && !allEnabled(out, o.DependsOn):
				want = No
			}
			if want != cur {
				out[o.Name] = want
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return out, nil
}

// Render serializes the given values in the native format, sorted by name:
// an assignment per enabled option, a commented marker per disabled one.
func (m *MemModel) Render(values map[string]string) []byte {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	for _, name := range names {
		if values[name] == No {
			fmt.Fprintf(&buf, "# %s%s is not set\n", m.Prefix, name)
		} else {
			fmt.Fprintf(&buf, "%s%s=%s\n", m.Prefix, name, values[name])
		}
	}
	return buf.Bytes()
}

// Normalize is a no-op for the in-memory model; there is no on-disk state
// to reconcile.
func (m *MemModel) Normalize(ctx context.Context, buildDir string) error {
	return nil
}

func allEnabled(values map[string]string, names []string) bool {
	for _, name := range names {
		if v, ok := values[name]; !ok || v == No {
			return false
		}
	}
	return true
}
