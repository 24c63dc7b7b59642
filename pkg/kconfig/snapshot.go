package kconfig

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sentinel errors for snapshot and config-file loading.
var (
	ErrEmptySnapshot = errors.New("snapshot defines no options")
	ErrBadConfigLine = errors.New("malformed config line")
)

// Snapshot is the JSON export of a configuration model: the full option
// space plus choice groups and the menu hierarchy, as produced by the
// external configuration toolchain.
type Snapshot struct {
	Prefix  string        `json:"prefix,omitempty"`
	Options []Option      `json:"options"`
	Choices []ChoiceGroup `json:"choices,omitempty"`
	Menus   []Menu        `json:"menus,omitempty"`
}

// LoadSnapshot reads a model snapshot from a JSON file and builds a
// MemModel from it.
func LoadSnapshot(path string) (*MemModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// ReadSnapshot decodes a model snapshot from r.
func ReadSnapshot(r io.Reader) (*MemModel, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(snap.Options) == 0 {
		return nil, ErrEmptySnapshot
	}

	m := NewMemModel(snap.Options, snap.Choices, snap.Menus)
	if snap.Prefix != "" {
		m.Prefix = snap.Prefix
	}
	return m, nil
}

// LoadConfigFile parses a native-format configuration file into an
// option->value mapping, stripping the given symbol prefix.
func LoadConfigFile(path, prefix string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return ParseConfig(f, prefix)
}

// ParseConfig reads native-format lines: assignments for set options and
// the commented "is not set" marker for disabled ones. Other comments and
// blank lines are skipped.
func ParseConfig(r io.Reader, prefix string) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			rest := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			if name, ok := strings.CutSuffix(rest, " is not set"); ok {
				values[strings.TrimPrefix(name, prefix)] = No
			}
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: %q", ErrBadConfigLine, lineno, line)
		}
		name = strings.TrimPrefix(strings.TrimSpace(name), prefix)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"`)
		values[name] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return values, nil
}
