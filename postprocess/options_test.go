package postprocess

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaySetFieldsWin(t *testing.T) {
	cam := NewCamera("cam", 64, 32)
	base := Options{
		Ratio:         1,
		TextureFormat: gputypes.TextureFormatRGBA8Unorm,
		Defines:       ParseDefines("#define A 1\n#define B 2"),
	}
	top := Options{
		Ratio:       0.5,
		Camera:      cam,
		TextureType: TextureTypeHalfFloat,
		Defines:     ParseDefines("#define B 3\n#define C"),
	}

	got := base.Overlay(top)

	assert.Equal(t, 0.5, got.Ratio)
	assert.Same(t, cam, got.Camera)
	assert.Equal(t, TextureTypeHalfFloat, got.TextureType)
	assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, got.TextureFormat)
	assert.Equal(t, []string{"A", "B", "C"}, got.Defines.Names())

	v, ok := got.Defines.Get("B")
	require.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestOverlayZeroFieldsKeepBase(t *testing.T) {
	base := Options{Ratio: 0.25, Width: 10, Height: 20, Reusable: true}
	got := base.Overlay(Options{})

	assert.Equal(t, 0.25, got.Ratio)
	assert.Equal(t, 10, got.Width)
	assert.Equal(t, 20, got.Height)
	assert.True(t, got.Reusable)
}

func TestRatioOptionsSource(t *testing.T) {
	opts := Ratio(0.75).PostProcessOptions()
	assert.Equal(t, 0.75, opts.Ratio)
	assert.Nil(t, opts.Camera)
}

func TestOptionsBuilderForcedOverridesWin(t *testing.T) {
	caller := Options{
		SamplingMode: gputypes.FilterModeNearest,
		Defines:      ParseDefines("#define DOF 0\n#define X 2"),
	}

	got := NewOptionsBuilder(Options{Ratio: 1}).
		Layer(caller).
		Force(ForceDefine("DOF", "1")).
		Force(ForceSamplingMode(gputypes.FilterModeLinear)).
		Build()

	assert.Equal(t, gputypes.FilterModeLinear, got.SamplingMode)
	v, ok := got.Defines.Get("DOF")
	require.True(t, ok)
	assert.Equal(t, "1", v)
	assert.True(t, got.Defines.Has("X"))
}

func TestOptionsBuilderDoesNotMutateLayers(t *testing.T) {
	caller := Options{Defines: ParseDefines("#define X 2")}

	NewOptionsBuilder(Options{}).
		Layer(caller).
		Force(ForceDefine("DOF", "1")).
		Build()

	assert.False(t, caller.Defines.Has("DOF"))
	assert.Equal(t, 1, caller.Defines.Len())
}

func TestOptionsBuilderSkipsNilLayer(t *testing.T) {
	got := NewOptionsBuilder(Options{Ratio: 0.5}).Layer(nil).Force(nil).Build()
	assert.Equal(t, 0.5, got.Ratio)
}

func TestNormalizedDefaults(t *testing.T) {
	e, _ := newTestEngine(t)
	got := Options{Engine: e}.normalized()

	assert.Equal(t, 1.0, got.Ratio)
	assert.Same(t, e, got.Engine)
	assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, got.TextureFormat)
	assert.Equal(t, gputypes.FilterModeNearest, got.SamplingMode)
}
