package dof

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dof/postprocess"
)

// countingCompiler replaces naga in tests and counts compilations.
type countingCompiler struct {
	calls int
}

func (c *countingCompiler) Compile(string) ([]byte, error) {
	c.calls++
	return []byte{0x03, 0x02, 0x23, 0x07}, nil
}

func newTestEngine(t *testing.T) *postprocess.Engine {
	e, _ := newCountingEngine(t)
	return e
}

func newCountingEngine(t *testing.T) (*postprocess.Engine, *countingCompiler) {
	t.Helper()
	c := &countingCompiler{}
	e := postprocess.NewEngine(postprocess.WithShaderCompiler(c), postprocess.WithWorkers(2))
	t.Cleanup(e.Close)
	return e, c
}

func solid(w, h int, c [4]float32) *postprocess.Texture {
	t := postprocess.NewTexture(w, h, gputypes.TextureFormatRGBA8Unorm, postprocess.TextureTypeUnsignedByte)
	t.Fill(c)
	return t
}

// halfPlane is white left of column edge and black from it on.
func halfPlane(w, h, edge int) *postprocess.Texture {
	t := solid(w, h, [4]float32{0, 0, 0, 1})
	for y := 0; y < h; y++ {
		for x := 0; x < edge; x++ {
			t.Set(x, y, [4]float32{1, 1, 1, 1})
		}
	}
	return t
}

func cocMap(w, h int, value float32) *postprocess.Texture {
	t := postprocess.NewTexture(w, h, gputypes.TextureFormatR8Unorm, postprocess.TextureTypeFloat)
	t.Fill([4]float32{value, 0, 0, 1})
	return t
}
