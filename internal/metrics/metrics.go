// Package metrics provides Prometheus instrumentation for the planning pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gpp"

// Registry holds all metric instances for one pipeline process.
type Registry struct {
	Invocations    *prometheus.CounterVec
	StageResults   *prometheus.CounterVec
	PluginRuns     *prometheus.CounterVec
	PluginDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewRegistry creates the pipeline metrics on a dedicated Prometheus registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	return newRegistry(reg, reg)
}

// NewRegistryWith creates the pipeline metrics on the given registerer.
func NewRegistryWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Registry {
	return newRegistry(reg, gatherer)
}

func newRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		Invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "invocations_total",
				Help:      "Total number of planning invocations by outcome",
			},
			[]string{"outcome"},
		),

		StageResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "results_total",
				Help:      "Aggregate stage results",
			},
			[]string{"stage", "result"},
		),

		PluginRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "plugin",
				Name:      "runs_total",
				Help:      "Plugin invocations by boolean outcome",
			},
			[]string{"stage", "plugin", "result"},
		),

		PluginDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "plugin",
				Name:      "duration_seconds",
				Help:      "Time spent inside a single plugin invocation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage", "plugin"},
		),

		gatherer: gatherer,
	}
}

// Gatherer returns the gatherer to expose over HTTP.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.gatherer
}

// ObservePlugin records a single plugin run.
func (r *Registry) ObservePlugin(stage, plugin string, ok bool, took time.Duration) {
	if r == nil {
		return
	}
	r.PluginRuns.WithLabelValues(stage, plugin, result(ok)).Inc()
	r.PluginDuration.WithLabelValues(stage, plugin).Observe(took.Seconds())
}

// ObserveStage records the aggregate result of a stage. Cancelled stages are
// counted separately from failed ones.
func (r *Registry) ObserveStage(stage string, ok, cancelled bool) {
	if r == nil {
		return
	}
	res := result(ok)
	if cancelled {
		res = "cancelled"
	}
	r.StageResults.WithLabelValues(stage, res).Inc()
}

// ObserveInvocation records the outcome of a whole planning invocation.
func (r *Registry) ObserveInvocation(outcome string) {
	if r == nil {
		return
	}
	r.Invocations.WithLabelValues(outcome).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
