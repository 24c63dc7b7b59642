package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSearchMetrics() {
	r.CandidatesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "debloat_candidates_total",
			Help: "Candidates tested, by validation outcome",
		},
		[]string{"outcome"},
	)

	r.IterationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "debloat_iterations_total",
			Help: "Search iterations completed",
		},
	)

	r.ImprovingIterationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "debloat_improving_iterations_total",
			Help: "Search iterations that adopted a new best-known state",
		},
	)

	r.GroupsSkippedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "debloat_groups_skipped_total",
			Help: "Candidate groups skipped before validation, by reason",
		},
		[]string{"reason"},
	)

	r.BisectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "debloat_bisections_total",
			Help: "Bisection fallback attempts, by result status",
		},
		[]string{"status"},
	)

	r.OptionsDisabled = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "debloat_options_disabled",
			Help: "Options disabled in the current best-known configuration",
		},
	)

	r.ConfigSize = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "debloat_config_size",
			Help: "Enabled options in the current best-known configuration",
		},
	)
}
