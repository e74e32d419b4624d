package postprocess

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
)

// stubCompiler stands in for naga so tests do not depend on the WGSL
// front end. It counts compilations.
type stubCompiler struct {
	calls int
	err   error
}

func (c *stubCompiler) Compile(source string) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []byte{0x03, 0x02, 0x23, 0x07}, nil
}

func newTestEngine(t *testing.T) (*Engine, *stubCompiler) {
	t.Helper()
	c := &stubCompiler{}
	e := NewEngine(WithShaderCompiler(c), WithWorkers(2))
	t.Cleanup(e.Close)
	return e, c
}

// halfPlane returns a w x h texture that is white left of column edge and
// black from it on.
func halfPlane(w, h, edge int) *Texture {
	t := NewTexture(w, h, gputypes.TextureFormatRGBA8Unorm, TextureTypeUnsignedByte)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < edge {
				t.Set(x, y, [4]float32{1, 1, 1, 1})
			} else {
				t.Set(x, y, [4]float32{0, 0, 0, 1})
			}
		}
	}
	return t
}

// cocSplit returns a CoC map with value left of column edge and right
// from it on.
func cocSplit(w, h, edge int, left, right float32) *Texture {
	t := NewTexture(w, h, gputypes.TextureFormatR8Unorm, TextureTypeUnsignedByte)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := right
			if x < edge {
				v = left
			}
			t.Set(x, y, [4]float32{v, 0, 0, 1})
		}
	}
	return t
}

// newDeviceEngine returns a test engine mirroring onto a noop device.
func newDeviceEngine(t *testing.T) (*Engine, *Device) {
	t.Helper()
	d, err := OpenDevice(noop.API{})
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	t.Cleanup(d.Destroy)

	e := NewEngine(WithShaderCompiler(&stubCompiler{}), WithWorkers(2), WithDevice(d))
	t.Cleanup(e.Close)
	return e, d
}
