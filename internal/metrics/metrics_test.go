package metrics

import (
	"bytes"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordApply(t *testing.T) {
	before := testutil.ToFloat64(passAppliesTotal.WithLabelValues("TestPass", "ok"))
	beforeErr := testutil.ToFloat64(passAppliesTotal.WithLabelValues("TestPass", "error"))

	RecordApply("TestPass", 0.002, nil)
	RecordApply("TestPass", 0, errors.New("unbound"))

	assert.Equal(t, before+1, testutil.ToFloat64(passAppliesTotal.WithLabelValues("TestPass", "ok")))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(passAppliesTotal.WithLabelValues("TestPass", "error")))
}

func TestRecordBinding(t *testing.T) {
	c := textureBindingsTotal.WithLabelValues("testSampler")
	before := testutil.ToFloat64(c)

	RecordBinding("testSampler")
	RecordBinding("testSampler")

	assert.Equal(t, before+2, testutil.ToFloat64(c))
}

func TestRecordCompilationAndAllocation(t *testing.T) {
	c := shaderCompilationsTotal.WithLabelValues("cached")
	before := testutil.ToFloat64(c)
	allocBefore := testutil.ToFloat64(renderTargetAllocations)

	RecordCompilation("cached")
	RecordAllocation()

	assert.Equal(t, before+1, testutil.ToFloat64(c))
	assert.Equal(t, allocBefore+1, testutil.ToFloat64(renderTargetAllocations))
}

func TestGatherer(t *testing.T) {
	RecordAllocation()

	families, err := Gatherer().Gather()
	assert.NoError(t, err)

	found := false
	for _, f := range families {
		if f.GetName() == "dof_render_target_allocations_total" {
			found = true
		}
	}
	assert.True(t, found, "dof_render_target_allocations_total not gathered")
}

func TestWriteText(t *testing.T) {
	RecordAllocation()
	RecordBinding("textSampler")

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# TYPE dof_render_target_allocations_total counter")
	assert.Contains(t, out, `dof_texture_bindings_total{sampler="textSampler"}`)
	assert.NotContains(t, out, "go_goroutines")
}
