package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPipelineMetrics() {
	r.StagesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "debloat_pipeline_stages_total",
			Help: "Validation pipeline stage executions, by stage and status",
		},
		[]string{"stage", "status"},
	)

	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "debloat_pipeline_stage_duration_seconds",
			Help:    "Validation pipeline stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
		[]string{"stage"},
	)

	r.BuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "debloat_build_duration_seconds",
			Help:    "Wall-clock build duration for successful builds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		},
	)
}
