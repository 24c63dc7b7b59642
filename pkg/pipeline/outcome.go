package pipeline

import (
	"encoding/json"
	"fmt"
)

// Outcome is the validation verdict for one candidate configuration. The
// values are ordered: each later stage is only attempted when every earlier
// stage passed, and a candidate's outcome is assigned exactly once.
type Outcome int8

const (
	// OutcomeUnset marks a candidate that has not been validated.
	OutcomeUnset Outcome = iota
	// OutcomeSuccess: all configured stages passed.
	OutcomeSuccess
	// OutcomeInvalidConfig: a forced value did not survive model
	// recomputation.
	OutcomeInvalidConfig
	// OutcomeBuildFail: the build command exited non-zero or timed out.
	OutcomeBuildFail
	// OutcomeBootFail: the boot-test command exited non-zero or timed out.
	OutcomeBootFail
	// OutcomeRuntimeFail: the runtime-test command exited non-zero or
	// timed out.
	OutcomeRuntimeFail
)

// Success reports whether the candidate passed all stages.
func (o Outcome) Success() bool {
	return o == OutcomeSuccess
}

// String returns the wire name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeUnset:
		return "unset"
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidConfig:
		return "invalid_config"
	case OutcomeBuildFail:
		return "build_fail"
	case OutcomeBootFail:
		return "boot_fail"
	case OutcomeRuntimeFail:
		return "runtime_fail"
	default:
		return "unknown"
	}
}

// ParseOutcome converts a wire name back to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "unset":
		return OutcomeUnset, nil
	case "success":
		return OutcomeSuccess, nil
	case "invalid_config":
		return OutcomeInvalidConfig, nil
	case "build_fail":
		return OutcomeBuildFail, nil
	case "boot_fail":
		return OutcomeBootFail, nil
	case "runtime_fail":
		return OutcomeRuntimeFail, nil
	default:
		return OutcomeUnset, fmt.Errorf("unknown outcome %q", s)
	}
}

// MarshalJSON encodes the outcome as its wire name.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes an outcome from its wire name.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOutcome(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
