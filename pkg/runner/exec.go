package runner

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/dd0wney/cluso-debloat/pkg/logging"
)

// ExecRunner runs stage commands through the shell.
type ExecRunner struct {
	cfg    Config
	logger logging.Logger
}

// NewExecRunner validates the configuration and returns a runner. A build
// command is mandatory; boot and runtime commands may be empty.
func NewExecRunner(cfg Config, logger logging.Logger) (*ExecRunner, error) {
	if cfg.BuildCmd == "" {
		return nil, ErrNoBuildCommand
	}
	return &ExecRunner{
		cfg:    cfg.withDefaults(),
		logger: logger.With(logging.Component("runner")),
	}, nil
}

// Build runs the build command, reporting wall-clock duration either way.
func (r *ExecRunner) Build(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	err := r.run(ctx, "build", r.cfg.BuildCmd, r.cfg.BuildTimeout)
	return time.Since(start), err
}

// Boot runs the boot-test command. Calling Boot without a configured
// command is a no-op success.
func (r *ExecRunner) Boot(ctx context.Context) error {
	if r.cfg.BootCmd == "" {
		return nil
	}
	return r.run(ctx, "boot", r.cfg.BootCmd, r.cfg.BootTimeout)
}

// Runtime runs the runtime-test command.
func (r *ExecRunner) Runtime(ctx context.Context) error {
	if r.cfg.RuntimeCmd == "" {
		return nil
	}
	return r.run(ctx, "runtime", r.cfg.RuntimeCmd, r.cfg.RuntimeTimeout)
}

// HasBoot reports whether a boot-test command is configured.
func (r *ExecRunner) HasBoot() bool {
	return r.cfg.BootCmd != ""
}

// HasRuntime reports whether a runtime-test command is configured.
func (r *ExecRunner) HasRuntime() bool {
	return r.cfg.RuntimeCmd != ""
}

func (r *ExecRunner) run(parent context.Context, stage, command string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	r.logger.Debug("running stage command",
		logging.Stage(stage),
		logging.String("command", command),
		logging.Duration("timeout", timeout),
	)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = r.cfg.WorkDir
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		r.logger.Warn("stage command timed out",
			logging.Stage(stage),
			logging.Duration("timeout", timeout),
		)
		return fmt.Errorf("%w: %s after %s", ErrStageTimeout, stage, timeout)
	}

	r.logger.Debug("stage command failed",
		logging.Stage(stage),
		logging.Error(err),
		logging.String("output_tail", tail(output, 512)),
	)
	return fmt.Errorf("%w: %s: %v", ErrStageFailed, stage, err)
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
