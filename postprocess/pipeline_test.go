package postprocess

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineChainsOutputs(t *testing.T) {
	e, _ := newTestEngine(t)

	half, err := NewPostProcess("half", copyKernel, nil, Options{Engine: e, Ratio: 0.5})
	require.NoError(t, err)
	copyPass, err := NewPostProcess("copy", copyKernel, nil, Options{Engine: e})
	require.NoError(t, err)

	p := NewPipeline("chain", half, copyPass)
	in := NewTexture(8, 8, gputypes.TextureFormatRGBA8Unorm, TextureTypeUnsignedByte)
	in.Fill([4]float32{0, 0, 1, 1})

	out, err := p.Render(in)
	require.NoError(t, err)
	assert.Same(t, copyPass.OutputTexture(), out)
	assert.Equal(t, 4, out.Width())
	assert.Equal(t, [4]float32{0, 0, 1, 1}, out.At(2, 2))
	assert.Len(t, p.Passes(), 2)
}

func TestPipelineEmptyReturnsInput(t *testing.T) {
	in := NewTexture(1, 1, gputypes.TextureFormatRGBA8Unorm, TextureTypeUnsignedByte)
	out, err := NewPipeline("empty").Render(in)
	require.NoError(t, err)
	assert.Same(t, in, out)
}

func TestPipelineWrapsPassError(t *testing.T) {
	e, _ := newTestEngine(t)
	boom := errors.New("boom")

	failing, err := NewPostProcess("failing", func(*Effect, *Texture) error { return boom }, nil, Options{Engine: e})
	require.NoError(t, err)

	p := NewPipeline("chain")
	p.Add(failing)

	_, err = p.Render(NewTexture(1, 1, gputypes.TextureFormatRGBA8Unorm, TextureTypeUnsignedByte))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
}

func TestPipelineDispose(t *testing.T) {
	e, _ := newTestEngine(t)
	a, err := NewPostProcess("a", nopKernel, nil, Options{Engine: e})
	require.NoError(t, err)

	NewPipeline("chain", a).Dispose()
	assert.True(t, a.IsDisposed())
}
