package kconfig

import (
	"strings"
	"testing"
)

func TestMemModelValues(t *testing.T) {
	m := NewMemModel([]Option{
		{Name: "FOO", Value: Yes},
		{Name: "BAR", Value: "4096"},
		{Name: "BAZ"},
	}, nil, nil)

	values := m.Values()
	if values["FOO"] != Yes {
		t.Errorf("FOO = %q, want y", values["FOO"])
	}
	if values["BAR"] != "4096" {
		t.Errorf("BAR = %q, want 4096", values["BAR"])
	}
	if values["BAZ"] != No {
		t.Errorf("BAZ = %q, want n (empty declared value)", values["BAZ"])
	}

	// Mutating the returned map must not touch the model.
	values["FOO"] = No
	if m.Values()["FOO"] != Yes {
		t.Error("Values() returned a live reference to internal state")
	}
}

func TestMemModelEvalForcedValueSticks(t *testing.T) {
	m := NewMemModel([]Option{
		{Name: "FOO", Value: Yes},
		{Name: "BAR", Value: Yes},
	}, nil, nil)

	final, err := m.Eval(map[string]string{"FOO": No})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if final["FOO"] != No {
		t.Errorf("FOO = %q, want n", final["FOO"])
	}
	if final["BAR"] != Yes {
		t.Errorf("BAR = %q, want y (untouched)", final["BAR"])
	}
}

func TestMemModelEvalSelectOverridesForcedValue(t *testing.T) {
	// SELECTOR selects TARGET; forcing TARGET off must not stick while
	// SELECTOR stays enabled.
	m := NewMemModel([]Option{
		{Name: "SELECTOR", Value: Yes, Selects: []Select{{Target: "TARGET"}}},
		{Name: "TARGET", Value: Yes},
	}, nil, nil)

	final, err := m.Eval(map[string]string{"TARGET": No})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if final["TARGET"] != Yes {
		t.Errorf("TARGET = %q, want y (re-selected)", final["TARGET"])
	}

	// Disabling both sticks: no enabled selector remains.
	final, err = m.Eval(map[string]string{"TARGET": No, "SELECTOR": No})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if final["TARGET"] != No || final["SELECTOR"] != No {
		t.Errorf("got TARGET=%q SELECTOR=%q, want both n", final["TARGET"], final["SELECTOR"])
	}
}

func TestMemModelEvalConditionalSelect(t *testing.T) {
	m := NewMemModel([]Option{
		{Name: "A", Value: Yes, Selects: []Select{{Target: "B", Condition: []string{"COND"}}}},
		{Name: "B", Value: Yes},
		{Name: "COND", Value: No},
	}, nil, nil)

	// Condition disabled: the select does not fire, forcing B off sticks.
	final, err := m.Eval(map[string]string{"B": No})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if final["B"] != No {
		t.Errorf("B = %q, want n (select condition unsatisfied)", final["B"])
	}
}

func TestMemModelEvalDependencyDisables(t *testing.T) {
	m := NewMemModel([]Option{
		{Name: "NET", Value: Yes},
		{Name: "NET_DRIVER", Value: Yes, DependsOn: []string{"NET"}},
	}, nil, nil)

	final, err := m.Eval(map[string]string{"NET": No})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if final["NET_DRIVER"] != No {
		t.Errorf("NET_DRIVER = %q, want n (dependency gone)", final["NET_DRIVER"])
	}
}

func TestMemModelEvalIgnoresUnknownNames(t *testing.T) {
	m := NewMemModel([]Option{{Name: "FOO", Value: Yes}}, nil, nil)

	final, err := m.Eval(map[string]string{"NO_SUCH": No})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if _, ok := final["NO_SUCH"]; ok {
		t.Error("unknown forced name leaked into the result")
	}
}

func TestMemModelEvalHook(t *testing.T) {
	m := NewMemModel([]Option{
		{Name: "A", Value: Yes},
		{Name: "B", Value: Yes},
	}, nil, nil)
	// Model recomputation that re-enables A whenever B is still on.
	m.EvalHook = func(values map[string]string) {
		if values["B"] != No {
			values["A"] = Yes
		}
	}

	final, err := m.Eval(map[string]string{"A": No})
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if final["A"] != Yes {
		t.Errorf("A = %q, want y (hook re-enabled)", final["A"])
	}
}

func TestMemModelRender(t *testing.T) {
	m := NewMemModel([]Option{
		{Name: "ZED", Value: Yes},
		{Name: "ALPHA", Value: No},
		{Name: "MID", Value: "128"},
	}, nil, nil)

	got := string(m.Render(m.Values()))
	want := "# CONFIG_ALPHA is not set\nCONFIG_MID=128\nCONFIG_ZED=y\n"
	if got != want {
		t.Errorf("Render mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestMemModelRenderRoundTrip(t *testing.T) {
	m := NewMemModel([]Option{
		{Name: "A", Value: Yes},
		{Name: "B", Value: No},
		{Name: "C", Value: "hello"},
	}, nil, nil)

	parsed, err := ParseConfig(strings.NewReader(string(m.Render(m.Values()))), m.Prefix)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	for name, want := range m.Values() {
		if parsed[name] != want {
			t.Errorf("%s = %q after round trip, want %q", name, parsed[name], want)
		}
	}
}
