// Package profile loads a debloat run profile from YAML. A profile bundles
// the build directory, stage commands, timeouts, and search settings so
// repeated runs against the same target don't need a wall of flags.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Defaults applied by Load when the profile leaves a field unset.
const (
	DefaultBuildTimeout   = time.Hour
	DefaultBootTimeout    = 10 * time.Minute
	DefaultRuntimeTimeout = 30 * time.Minute
	DefaultMaxIterations  = 50
)

// Duration wraps time.Duration so profiles can write "90m" or "1h30m"
// instead of nanosecond integers.
type Duration time.Duration

// UnmarshalYAML parses a duration string such as "10m" or "1h30m".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Commands are the shell commands for each validation stage. Build is
// mandatory; boot and runtime stages are skipped when their command is
// empty.
type Commands struct {
	Build   string `yaml:"build" validate:"required"`
	Boot    string `yaml:"boot"`
	Runtime string `yaml:"runtime"`
}

// Timeouts bound each stage's wall-clock time.
type Timeouts struct {
	Build   Duration `yaml:"build"`
	Boot    Duration `yaml:"boot"`
	Runtime Duration `yaml:"runtime"`
}

// Search tunes the greedy loop.
type Search struct {
	MaxIterations int `yaml:"max_iterations" validate:"omitempty,min=1"`
}

// Profile is a complete run configuration.
type Profile struct {
	BuildDir string   `yaml:"build_dir" validate:"required"`
	Commands Commands `yaml:"commands"`
	Timeouts Timeouts `yaml:"timeouts"`
	Search   Search   `yaml:"search"`

	// JournalPath enables the candidate journal when non-empty.
	JournalPath string `yaml:"journal,omitempty"`
}

// Load reads, defaults, and validates a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes a profile from YAML bytes, applies defaults, and validates.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) applyDefaults() {
	if p.Timeouts.Build == 0 {
		p.Timeouts.Build = Duration(DefaultBuildTimeout)
	}
	if p.Timeouts.Boot == 0 {
		p.Timeouts.Boot = Duration(DefaultBootTimeout)
	}
	if p.Timeouts.Runtime == 0 {
		p.Timeouts.Runtime = Duration(DefaultRuntimeTimeout)
	}
	if p.Search.MaxIterations == 0 {
		p.Search.MaxIterations = DefaultMaxIterations
	}
}

// Validate checks struct tags first, then the cross-field rules tags can't
// express.
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}
	if p.Commands.Boot == "" && p.Commands.Runtime != "" {
		return errors.New("Commands.Runtime: runtime test configured without a boot test")
	}
	for _, t := range []struct {
		field string
		value Duration
	}{
		{"Timeouts.Build", p.Timeouts.Build},
		{"Timeouts.Boot", p.Timeouts.Boot},
		{"Timeouts.Runtime", p.Timeouts.Runtime},
	} {
		if t.value < 0 {
			return fmt.Errorf("%s: timeout must be positive, got %v", t.field, t.value.Std())
		}
	}
	return nil
}

// formatValidationError converts validator errors to a friendlier format.
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	for _, e := range validationErrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
