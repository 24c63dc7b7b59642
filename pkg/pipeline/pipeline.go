// Package pipeline validates candidate configurations through the ordered
// constraint -> build -> boot -> runtime sequence, stopping at the first
// failing stage. Collaborator errors are contained here: they reject the
// candidate instead of propagating as crashes.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dd0wney/cluso-debloat/pkg/kconfig"
	"github.com/dd0wney/cluso-debloat/pkg/logging"
	"github.com/dd0wney/cluso-debloat/pkg/metrics"
	"github.com/dd0wney/cluso-debloat/pkg/runner"
)

// ConfigFileName is the materialized configuration file inside the build
// directory.
const ConfigFileName = ".config"

// StageError wraps an unexpected collaborator failure with the stage it
// surfaced in.
type StageError struct {
	Stage string
	Cause error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StageError) Unwrap() error {
	return e.Cause
}

// Result is the verdict for one validated candidate.
type Result struct {
	Outcome Outcome
	// BuildDuration is the wall-clock build time. Zero when the pipeline
	// stopped before the build stage.
	BuildDuration time.Duration
}

// Pipeline runs candidates through the validation stages.
type Pipeline struct {
	model    kconfig.Model
	runner   runner.Runner
	buildDir string
	logger   logging.Logger
	metrics  *metrics.Registry
}

// New creates a validation pipeline. The metrics registry may be nil.
func New(model kconfig.Model, r runner.Runner, buildDir string, logger logging.Logger, reg *metrics.Registry) *Pipeline {
	return &Pipeline{
		model:    model,
		runner:   r,
		buildDir: buildDir,
		logger:   logger.With(logging.Component("pipeline")),
		metrics:  reg,
	}
}

// Validate runs the candidate mapping through every configured stage in
// order. The first failing stage decides the outcome; later stages are
// never attempted. A timeout counts as a failure of its stage only.
func (p *Pipeline) Validate(ctx context.Context, config map[string]string) Result {
	final, outcome := p.checkConstraints(config)
	if outcome != OutcomeSuccess {
		return Result{Outcome: outcome}
	}

	buildDur, outcome := p.checkBuild(ctx, final)
	if outcome != OutcomeSuccess {
		return Result{Outcome: outcome, BuildDuration: buildDur}
	}

	if outcome := p.checkBoot(ctx); outcome != OutcomeSuccess {
		return Result{Outcome: outcome, BuildDuration: buildDur}
	}

	if outcome := p.checkRuntime(ctx); outcome != OutcomeSuccess {
		return Result{Outcome: outcome, BuildDuration: buildDur}
	}

	return Result{Outcome: OutcomeSuccess, BuildDuration: buildDur}
}

// checkConstraints hands the forced values to a fresh model evaluation and
// verifies every forced option still holds its value afterwards; the model
// may have overridden it through its own default or select logic.
func (p *Pipeline) checkConstraints(config map[string]string) (map[string]string, Outcome) {
	start := time.Now()

	final, err := p.model.Eval(config)
	if err != nil {
		p.adapterFailure("constraint", err)
		p.recordStage("constraint", "fail", start)
		return nil, OutcomeInvalidConfig
	}

	for name, want := range config {
		got, ok := final[name]
		if !ok {
			// Unknown to the model; nothing forced, nothing to verify.
			continue
		}
		if got != want {
			p.logger.Debug("forced value did not stick",
				logging.Symbol(name),
				logging.String("forced", want),
				logging.String("recomputed", got),
			)
			p.recordStage("constraint", "fail", start)
			return nil, OutcomeInvalidConfig
		}
	}

	p.recordStage("constraint", "pass", start)
	return final, OutcomeSuccess
}

// checkBuild materializes the evaluated configuration, normalizes it
// through the model, and runs the build command.
func (p *Pipeline) checkBuild(ctx context.Context, final map[string]string) (time.Duration, Outcome) {
	start := time.Now()

	if err := p.writeConfig(final); err != nil {
		p.adapterFailure("build", err)
		p.recordStage("build", "fail", start)
		return 0, OutcomeBuildFail
	}

	if err := p.model.Normalize(ctx, p.buildDir); err != nil {
		p.adapterFailure("build", err)
		p.recordStage("build", "fail", start)
		return 0, OutcomeBuildFail
	}

	dur, err := p.runner.Build(ctx)
	if err != nil {
		p.logger.Debug("build failed", logging.Error(err), logging.Duration("build_time", dur))
		p.recordStage("build", "fail", start)
		return dur, OutcomeBuildFail
	}

	p.recordStage("build", "pass", start)
	if p.metrics != nil {
		p.metrics.RecordBuild(dur)
	}
	return dur, OutcomeSuccess
}

// checkBoot is vacuously successful when no boot command is configured.
func (p *Pipeline) checkBoot(ctx context.Context) Outcome {
	if !p.runner.HasBoot() {
		return OutcomeSuccess
	}
	start := time.Now()
	if err := p.runner.Boot(ctx); err != nil {
		p.logger.Debug("boot test failed", logging.Error(err))
		p.recordStage("boot", "fail", start)
		return OutcomeBootFail
	}
	p.recordStage("boot", "pass", start)
	return OutcomeSuccess
}

// checkRuntime is vacuously successful when no runtime command is
// configured.
func (p *Pipeline) checkRuntime(ctx context.Context) Outcome {
	if !p.runner.HasRuntime() {
		return OutcomeSuccess
	}
	start := time.Now()
	if err := p.runner.Runtime(ctx); err != nil {
		p.logger.Debug("runtime test failed", logging.Error(err))
		p.recordStage("runtime", "fail", start)
		return OutcomeRuntimeFail
	}
	p.recordStage("runtime", "pass", start)
	return OutcomeSuccess
}

func (p *Pipeline) writeConfig(values map[string]string) error {
	if err := os.MkdirAll(p.buildDir, 0755); err != nil {
		return fmt.Errorf("create build dir: %w", err)
	}
	path := filepath.Join(p.buildDir, ConfigFileName)
	if err := os.WriteFile(path, p.model.Render(values), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// adapterFailure logs an unexpected collaborator error. The candidate is
// rejected through the stage's failure outcome rather than crashing the
// search.
func (p *Pipeline) adapterFailure(stage string, err error) {
	p.logger.Error("collaborator failure, rejecting candidate",
		logging.Stage(stage),
		logging.Error(&StageError{Stage: stage, Cause: err}),
	)
}

func (p *Pipeline) recordStage(stage, status string, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordStage(stage, status, time.Since(start))
	}
}
