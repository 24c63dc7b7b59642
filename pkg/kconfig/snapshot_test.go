package kconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadSnapshot(t *testing.T) {
	src := `{
		"prefix": "CONFIG_",
		"options": [
			{"name": "FOO", "value": "y", "selects": [{"target": "BAR"}]},
			{"name": "BAR", "value": "y", "depends_on": ["FOO"]},
			{"name": "PICK_A", "value": "y", "choice": "PICKER"}
		],
		"choices": [{"name": "PICKER", "members": ["PICK_A"]}],
		"menus": [{"title": "Drivers", "symbols": ["BAR"]}]
	}`

	m, err := ReadSnapshot(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}

	if got := len(m.Options()); got != 3 {
		t.Errorf("Expected 3 options, got %d", got)
	}
	if got := len(m.Choices()); got != 1 {
		t.Errorf("Expected 1 choice group, got %d", got)
	}
	if got := len(m.Menus()); got != 1 {
		t.Errorf("Expected 1 menu, got %d", got)
	}
	if m.Options()[0].Selects[0].Target != "BAR" {
		t.Errorf("FOO select target = %q, want BAR", m.Options()[0].Selects[0].Target)
	}
}

func TestReadSnapshotEmpty(t *testing.T) {
	_, err := ReadSnapshot(strings.NewReader(`{"options": []}`))
	if !errors.Is(err, ErrEmptySnapshot) {
		t.Errorf("Expected ErrEmptySnapshot, got %v", err)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot("/no/such/snapshot.json"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestParseConfig(t *testing.T) {
	src := `
# Generated file, do not edit
CONFIG_FOO=y
# CONFIG_BAR is not set
CONFIG_NAME="hello world"
CONFIG_SIZE=4096
`
	values, err := ParseConfig(strings.NewReader(src), "CONFIG_")
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	tests := []struct {
		name, want string
	}{
		{"FOO", "y"},
		{"BAR", "n"},
		{"NAME", "hello world"},
		{"SIZE", "4096"},
	}
	for _, tt := range tests {
		if got := values[tt.name]; got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, got, tt.want)
		}
	}
	if len(values) != 4 {
		t.Errorf("Expected 4 values, got %d", len(values))
	}
}

func TestParseConfigMalformedLine(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("CONFIG_BROKEN\n"), "CONFIG_")
	if !errors.Is(err, ErrBadConfigLine) {
		t.Errorf("Expected ErrBadConfigLine, got %v", err)
	}
}

func TestLoadConfigFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.config")
	if err := os.WriteFile(path, []byte("CONFIG_A=y\n# CONFIG_B is not set\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	values, err := LoadConfigFile(path, "CONFIG_")
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}

	m := NewMemModel([]Option{
		{Name: "A", Value: No},
		{Name: "B", Value: Yes},
		{Name: "C", Value: Yes},
	}, nil, nil)
	m.ApplyConfig(values)

	got := m.Values()
	if got["A"] != Yes || got["B"] != No || got["C"] != Yes {
		t.Errorf("overlay result = %v", got)
	}
}
