// Package search implements the greedy, first-improvement debloating loop:
// scan candidate groups in order, disable a whole group at a time, keep the
// first configuration that still validates, and fall back to a single
// bisection step when a large group fails.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-debloat/pkg/candidates"
	"github.com/dd0wney/cluso-debloat/pkg/journal"
	"github.com/dd0wney/cluso-debloat/pkg/kconfig"
	"github.com/dd0wney/cluso-debloat/pkg/logging"
	"github.com/dd0wney/cluso-debloat/pkg/metrics"
	"github.com/dd0wney/cluso-debloat/pkg/pipeline"
)

// BisectionThreshold is the group size above which a failed group earns a
// bisection attempt.
const BisectionThreshold = 5

// ErrBaselineInvalid is returned when the starting configuration itself
// fails validation; there is nothing to search from.
var ErrBaselineInvalid = errors.New("baseline configuration failed validation")

// Validator validates one candidate configuration through every stage.
// Satisfied by *pipeline.Pipeline.
type Validator interface {
	Validate(ctx context.Context, config map[string]string) pipeline.Result
}

// Candidate is one tested configuration with its verdict.
type Candidate struct {
	// Config is the full option mapping that was validated.
	Config map[string]string
	// Disabled holds every option forced off so far, this trial included.
	Disabled map[string]struct{}
	// Group names the candidate group this trial disabled.
	Group string
	// Outcome is the pipeline verdict.
	Outcome pipeline.Outcome
	// BuildTime is the wall-clock build duration, zero if the pipeline
	// stopped before the build stage.
	BuildTime time.Duration
	// SizeReduction counts the options this trial newly disabled relative
	// to the best-known state it was derived from.
	SizeReduction int
}

// Result is the final state of a search run.
type Result struct {
	// Best is the last candidate that validated successfully. With a valid
	// baseline it is never nil, even when no group could be removed.
	Best Candidate
	// History lists every tested candidate in test order, baseline
	// excluded.
	History []Candidate
	// Iterations is the number of completed scan passes.
	Iterations int
	// ImprovingIterations counts passes that adopted a new best state.
	ImprovingIterations int
}

// Engine owns the best-known state and drives the search.
type Engine struct {
	validator  Validator
	groups     []candidates.Group
	selectedBy map[string][]string

	maxIterations int
	logger        logging.Logger
	metrics       *metrics.Registry
	journal       *journal.Journal

	best    Candidate
	history []Candidate
}

// Options carries the optional collaborators. Metrics and Journal may be
// nil.
type Options struct {
	MaxIterations int
	Logger        logging.Logger
	Metrics       *metrics.Registry
	Journal       *journal.Journal
}

// New creates an engine over a baseline configuration and a fixed group
// list. The group list and selected-by map are not mutated by the search.
func New(v Validator, groups []candidates.Group, selectedBy map[string][]string, baseline map[string]string, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{
		validator:     v,
		groups:        groups,
		selectedBy:    selectedBy,
		maxIterations: opts.MaxIterations,
		logger:        logger.With(logging.Component("search")),
		metrics:       opts.Metrics,
		journal:       opts.Journal,
		best: Candidate{
			Config:   cloneConfig(baseline),
			Disabled: make(map[string]struct{}),
			Outcome:  pipeline.OutcomeUnset,
		},
	}
}

// Run validates the baseline and then iterates until the iteration cap, a
// full pass without improvement, or context cancellation. Cancellation is
// not an error: the best-known state at that point is still returned.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	baseline := e.validator.Validate(ctx, e.best.Config)
	if !baseline.Outcome.Success() {
		e.logger.Error("baseline configuration rejected",
			logging.Outcome(baseline.Outcome.String()),
		)
		return e.result(0, 0), fmt.Errorf("%w: %s", ErrBaselineInvalid, baseline.Outcome)
	}
	e.best.Outcome = pipeline.OutcomeSuccess
	e.best.BuildTime = baseline.BuildDuration
	e.logger.Info("baseline validated",
		logging.Count("options", len(e.best.Config)),
		logging.Count("groups", len(e.groups)),
		logging.Duration("build_time", baseline.BuildDuration),
	)

	iterations, improving := 0, 0
	for iterations < e.maxIterations && ctx.Err() == nil {
		improved := e.scanOnce(ctx)
		iterations++
		if improved {
			improving++
		}
		if e.metrics != nil {
			e.metrics.RecordIteration(improved)
		}
		e.logger.Info("iteration complete",
			logging.Iteration(iterations),
			logging.Bool("improved", improved),
			logging.Count("disabled", len(e.best.Disabled)),
		)
		if !improved {
			// Fixed point: a full pass removed nothing.
			break
		}
	}
	if ctx.Err() != nil {
		e.logger.Warn("search interrupted, keeping best-known state",
			logging.Count("disabled", len(e.best.Disabled)),
		)
	}
	return e.result(iterations, improving), nil
}

// scanOnce walks the group list in order and reports whether a trial was
// adopted. First improvement ends the pass.
func (e *Engine) scanOnce(ctx context.Context) bool {
	for _, group := range e.groups {
		if ctx.Err() != nil {
			return false
		}
		if e.fullyDisabled(group) {
			e.skip(group, "already_disabled")
			continue
		}
		if selector, member := e.vetoed(group); selector != "" {
			e.logger.Debug("group vetoed by active selector",
				logging.Group(group.Name),
				logging.Symbol(member),
				logging.String("selector", selector),
			)
			e.skip(group, "vetoed")
			continue
		}

		cand := e.trial(ctx, group.Name, group.Members)
		if cand.Outcome.Success() {
			e.adopt(cand)
			return true
		}
		if len(group.Members) > BisectionThreshold {
			e.bisect(ctx, group)
		}
	}
	return false
}

// trial disables the group members on top of the best-known state,
// validates the result, and records it in history and the journal.
func (e *Engine) trial(ctx context.Context, name string, members []string) Candidate {
	cand := Candidate{
		Config:   cloneConfig(e.best.Config),
		Disabled: cloneSet(e.best.Disabled),
		Group:    name,
	}
	for _, m := range members {
		cand.Config[m] = kconfig.No
		cand.Disabled[m] = struct{}{}
	}
	cand.SizeReduction = len(cand.Disabled) - len(e.best.Disabled)

	res := e.validator.Validate(ctx, cand.Config)
	cand.Outcome = res.Outcome
	cand.BuildTime = res.BuildDuration

	e.history = append(e.history, cand)
	e.record(cand, len(members))
	e.logger.Debug("candidate tested",
		logging.Group(name),
		logging.Outcome(cand.Outcome.String()),
		logging.Count("members", len(members)),
	)
	return cand
}

// bisect retries the first half of a failed group. One level only: no
// recursion, and the second half is never attempted on its own.
func (e *Engine) bisect(ctx context.Context, group candidates.Group) {
	if ctx.Err() != nil {
		return
	}
	half := group.Members[:len(group.Members)/2]
	e.logger.Debug("bisecting failed group",
		logging.Group(group.Name),
		logging.Count("half_size", len(half)),
	)
	cand := e.trial(ctx, group.Name+"/bisect", half)
	if cand.Outcome.Success() {
		e.adopt(cand)
		if e.metrics != nil {
			e.metrics.RecordBisection("success")
		}
		return
	}
	if e.metrics != nil {
		e.metrics.RecordBisection("fail")
	}
}

// adopt promotes a successful candidate to the best-known state.
func (e *Engine) adopt(cand Candidate) {
	e.best = cand
	e.logger.Info("improved configuration accepted",
		logging.Group(cand.Group),
		logging.Count("removed", cand.SizeReduction),
		logging.Count("disabled_total", len(cand.Disabled)),
	)
	if e.metrics != nil {
		e.metrics.SetBestState(enabledCount(cand.Config), len(cand.Disabled))
	}
}

// fullyDisabled reports whether every member is already off in the
// best-known state.
func (e *Engine) fullyDisabled(group candidates.Group) bool {
	for _, m := range group.Members {
		if v, ok := e.best.Config[m]; ok && v != kconfig.No {
			return false
		}
	}
	return true
}

// vetoed returns the first enabled selector of any group member, with the
// member it selects. Select conditions are ignored here: any selector
// counts, which skips some safely-removable groups but never wastes a
// validation on a doomed one.
func (e *Engine) vetoed(group candidates.Group) (selector, member string) {
	for _, m := range group.Members {
		for _, sel := range e.selectedBy[m] {
			if v, ok := e.best.Config[sel]; ok && v != kconfig.No {
				return sel, m
			}
		}
	}
	return "", ""
}

func (e *Engine) skip(group candidates.Group, reason string) {
	if e.metrics != nil {
		e.metrics.RecordSkip(reason)
	}
}

func (e *Engine) record(cand Candidate, members int) {
	if e.metrics != nil {
		e.metrics.RecordCandidate(cand.Outcome.String())
	}
	if e.journal == nil {
		return
	}
	err := e.journal.Append(journal.Record{
		Kind:         journal.KindCandidate,
		Group:        cand.Group,
		Members:      members,
		Outcome:      cand.Outcome.String(),
		Disabled:     len(cand.Disabled),
		BuildSeconds: cand.BuildTime.Seconds(),
		Accepted:     cand.Outcome.Success(),
	})
	if err != nil {
		// Journal loss degrades diagnostics, not the search.
		e.logger.Warn("journal append failed", logging.Error(err))
	}
}

func (e *Engine) result(iterations, improving int) Result {
	return Result{
		Best:                e.best,
		History:             e.history,
		Iterations:          iterations,
		ImprovingIterations: improving,
	}
}

func cloneConfig(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func enabledCount(config map[string]string) int {
	n := 0
	for _, v := range config {
		if v != kconfig.No && v != "" {
			n++
		}
	}
	return n
}
