// Package metrics exposes Prometheus instrumentation for the debloating
// run: candidates by outcome, pipeline stage timings, and best-known state
// gauges. Exposition is optional and enabled from the CLI.
package metrics

import (
	"time"
)

// RecordCandidate records one tested candidate with its validation outcome.
func (r *Registry) RecordCandidate(outcome string) {
	r.CandidatesTotal.WithLabelValues(outcome).Inc()
}

// RecordStage records a pipeline stage execution with its duration.
func (r *Registry) RecordStage(stage, status string, duration time.Duration) {
	r.StagesTotal.WithLabelValues(stage, status).Inc()
	r.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordBuild records a successful build's wall-clock duration.
func (r *Registry) RecordBuild(duration time.Duration) {
	r.BuildDuration.Observe(duration.Seconds())
}

// RecordIteration records a completed search iteration.
func (r *Registry) RecordIteration(improved bool) {
	r.IterationsTotal.Inc()
	if improved {
		r.ImprovingIterationsTotal.Inc()
	}
}

// RecordSkip records a candidate group skipped before validation.
func (r *Registry) RecordSkip(reason string) {
	r.GroupsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordBisection records a bisection fallback attempt.
func (r *Registry) RecordBisection(status string) {
	r.BisectionsTotal.WithLabelValues(status).Inc()
}

// SetBestState updates the best-known configuration gauges.
func (r *Registry) SetBestState(configSize, disabled int) {
	r.ConfigSize.Set(float64(configSize))
	r.OptionsDisabled.Set(float64(disabled))
}
