package dof

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/dof/postprocess"
)

func TestEffectPassLayout(t *testing.T) {
	tests := []struct {
		level      BlurLevel
		pairs      int
		kernel     float64
		passCount  int
		blurRatios []float64
	}{
		{BlurLevelLow, 1, 15, 4, []float64{1, 0.75}},
		{BlurLevelMedium, 2, 15.5, 6, []float64{1, 0.75, 0.75, 0.375}},
		{BlurLevelHigh, 3, 12.75, 8, []float64{1, 0.75, 0.75, 0.375, 0.375, 0.1875}},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			fx, err := NewEffect(EffectConfig{
				BlurLevel: tt.level,
				Depth:     depthMap(8, 8, 0),
				Engine:    newTestEngine(t),
			})
			require.NoError(t, err)
			defer fx.Dispose()

			assert.Len(t, fx.Passes(), tt.passCount)
			require.Len(t, fx.VerticalBlurs(), tt.pairs)
			require.Len(t, fx.HorizontalBlurs(), tt.pairs)
			assert.Equal(t, tt.pairs-1, fx.Merge().BlurLevel())

			var ratios []float64
			for i := 0; i < tt.pairs; i++ {
				y, x := fx.VerticalBlurs()[i], fx.HorizontalBlurs()[i]
				assert.Equal(t, tt.kernel, y.Kernel())
				assert.Equal(t, postprocess.V2(0, 1), y.Direction())
				assert.Equal(t, postprocess.V2(1, 0), x.Direction())
				assert.Equal(t, i == 0, y.ExternalTextureSamplerBinding(), "vertical blur %d", i)
				assert.False(t, x.ExternalTextureSamplerBinding())
				ratios = append(ratios, y.Options().Ratio, x.Options().Ratio)
			}
			assert.Equal(t, tt.blurRatios, ratios)
		})
	}
}

func TestEffectInvalidBlurLevel(t *testing.T) {
	_, err := NewEffect(EffectConfig{BlurLevel: BlurLevel(7), Engine: newTestEngine(t)})
	assert.ErrorIs(t, err, ErrInvalidBlurLevel)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "BlurLevel", cfgErr.Field)
}

func TestParseBlurLevel(t *testing.T) {
	for _, l := range []BlurLevel{BlurLevelLow, BlurLevelMedium, BlurLevelHigh} {
		got, err := ParseBlurLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err := ParseBlurLevel("extreme")
	assert.ErrorIs(t, err, ErrInvalidBlurLevel)
}

func TestEffectRenderInFocusKeepsFrame(t *testing.T) {
	frame := halfPlane(16, 8, 8)
	fx, err := NewEffect(EffectConfig{
		BlurLevel: BlurLevelMedium,
		Depth:     depthMap(16, 8, focusDepth),
		Engine:    newTestEngine(t),
	})
	require.NoError(t, err)
	defer fx.Dispose()

	out, err := fx.Render(frame)
	require.NoError(t, err)
	assert.Equal(t, 16, out.Width())
	assert.Equal(t, 8, out.Height())
	assert.Equal(t, 16, fx.Camera().Width())

	for _, x := range []int{0, 7, 8, 15} {
		assert.InDelta(t, frame.At(x, 4)[0], out.At(x, 4)[0], 1.0/255, "column %d", x)
	}
}

func TestEffectRenderOutOfFocusBlurs(t *testing.T) {
	frame := halfPlane(16, 8, 8)
	fx, err := NewEffect(EffectConfig{
		BlurLevel: BlurLevelLow,
		Depth:     depthMap(16, 8, 1),
		Engine:    newTestEngine(t),
	})
	require.NoError(t, err)
	defer fx.Dispose()

	out, err := fx.Render(frame)
	require.NoError(t, err)

	edge := out.At(7, 4)[0]
	assert.Less(t, edge, float32(0.95))
	assert.Greater(t, edge, float32(0.05))
}

func TestEffectUsesCameraViewport(t *testing.T) {
	cam := postprocess.NewCamera("main", 32, 16)
	fx, err := NewEffect(EffectConfig{
		Camera:    cam,
		BlurLevel: BlurLevelMedium,
		Depth:     depthMap(32, 16, 0.5),
		Engine:    newTestEngine(t),
	})
	require.NoError(t, err)

	_, err = fx.Render(solid(32, 16, [4]float32{0.5, 0.5, 0.5, 1}))
	require.NoError(t, err)

	x1 := fx.HorizontalBlurs()[1].OutputTexture()
	assert.Equal(t, 12, x1.Width())
	assert.Equal(t, 6, x1.Height())
	assert.Len(t, cam.PostProcesses(), 6)

	fx.Dispose()
	assert.Empty(t, cam.PostProcesses())
}

func TestEffectMissingDepthFailsRender(t *testing.T) {
	fx, err := NewEffect(EffectConfig{Engine: newTestEngine(t)})
	require.NoError(t, err)
	defer fx.Dispose()

	_, err = fx.Render(solid(4, 4, [4]float32{0, 0, 0, 1}))
	assert.ErrorIs(t, err, ErrMissingDepth)

	fx.SetDepth(depthMap(4, 4, 0.5))
	_, err = fx.Render(solid(4, 4, [4]float32{0, 0, 0, 1}))
	assert.NoError(t, err)
}
