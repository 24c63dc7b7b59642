// Package runner executes the external build, boot, and runtime test
// commands. Each stage is a blocking subprocess call with its own timeout;
// a timeout is reported the same way as a non-zero exit.
package runner

import (
	"context"
	"errors"
	"time"
)

// Default per-stage timeouts. The build dominates the budget; boot and
// runtime checks are comparatively quick.
const (
	DefaultBuildTimeout   = time.Hour
	DefaultBootTimeout    = 10 * time.Minute
	DefaultRuntimeTimeout = 30 * time.Minute
)

// Common sentinel errors
var (
	ErrNoBuildCommand = errors.New("no build command configured")
	ErrStageTimeout   = errors.New("stage timed out")
	ErrStageFailed    = errors.New("stage exited non-zero")
)

// Runner is the test-runner collaborator: three independently optional
// commands executed in a shared working directory.
type Runner interface {
	// Build runs the build command and reports its wall-clock duration.
	// The duration is measured even when the build fails.
	Build(ctx context.Context) (time.Duration, error)

	// Boot runs the boot-test command.
	Boot(ctx context.Context) error

	// Runtime runs the runtime-test command.
	Runtime(ctx context.Context) error

	// HasBoot reports whether a boot-test command is configured.
	HasBoot() bool

	// HasRuntime reports whether a runtime-test command is configured.
	HasRuntime() bool
}

// Config holds the commands and timeouts for an ExecRunner.
type Config struct {
	// WorkDir is the working directory every command runs in.
	WorkDir string

	// BuildCmd is required; BootCmd and RuntimeCmd are optional.
	BuildCmd   string
	BootCmd    string
	RuntimeCmd string

	BuildTimeout   time.Duration
	BootTimeout    time.Duration
	RuntimeTimeout time.Duration
}

// withDefaults fills in zero timeouts.
func (c Config) withDefaults() Config {
	if c.BuildTimeout == 0 {
		c.BuildTimeout = DefaultBuildTimeout
	}
	if c.BootTimeout == 0 {
		c.BootTimeout = DefaultBootTimeout
	}
	if c.RuntimeTimeout == 0 {
		c.RuntimeTimeout = DefaultRuntimeTimeout
	}
	return c
}
