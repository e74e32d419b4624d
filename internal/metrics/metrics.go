// Package metrics exposes Prometheus instrumentation for post-process passes.
package metrics

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

var (
	passAppliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dof_pass_applies_total",
			Help: "Total number of post-process draws",
		},
		[]string{"class", "status"},
	)

	passDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dof_pass_duration_seconds",
			Help:    "Time spent shading one post-process draw",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"class"},
	)

	textureBindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dof_texture_bindings_total",
			Help: "Total number of sampler bindings issued before draws",
		},
		[]string{"sampler"},
	)

	shaderCompilationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dof_shader_compilations_total",
			Help: "Total number of shader program requests",
		},
		[]string{"result"}, // result: compiled, cached, error
	)

	renderTargetAllocations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dof_render_target_allocations_total",
			Help: "Total number of render target (re)allocations",
		},
	)
)

// RecordApply records one draw of a pass of the given class.
func RecordApply(class string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	passAppliesTotal.WithLabelValues(class, status).Inc()
	if err == nil {
		passDuration.WithLabelValues(class).Observe(seconds)
	}
}

// RecordBinding records a texture bound to sampler.
func RecordBinding(sampler string) {
	textureBindingsTotal.WithLabelValues(sampler).Inc()
}

// RecordCompilation records a program request: "compiled", "cached" or "error".
func RecordCompilation(result string) {
	shaderCompilationsTotal.WithLabelValues(result).Inc()
}

// RecordAllocation records a render target allocation.
func RecordAllocation() {
	renderTargetAllocations.Inc()
}

// Gatherer returns the registry the metrics are registered with.
func Gatherer() prometheus.Gatherer {
	return prometheus.DefaultGatherer
}

// WriteText writes every dof_ metric family in the Prometheus text
// exposition format.
func WriteText(w io.Writer) error {
	families, err := Gatherer().Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "dof_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
