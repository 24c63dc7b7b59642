package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for a debloating run
type Registry struct {
	// Search Metrics
	CandidatesTotal          *prometheus.CounterVec
	IterationsTotal          prometheus.Counter
	ImprovingIterationsTotal prometheus.Counter
	GroupsSkippedTotal       *prometheus.CounterVec
	BisectionsTotal          *prometheus.CounterVec
	OptionsDisabled          prometheus.Gauge
	ConfigSize               prometheus.Gauge

	// Pipeline Metrics
	StagesTotal   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	BuildDuration prometheus.Histogram

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initSearchMetrics()
	r.initPipelineMetrics()

	return r
}

// Handler returns an HTTP handler exposing the registry in Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
