// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package postprocess

import (
	"image"
	"image/color"
	"math"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dof/internal/filter"
)

// TextureType is the per-channel storage type of a render target.
type TextureType int

const (
	// TextureTypeUnsignedByte stores 8 bits per channel.
	TextureTypeUnsignedByte TextureType = iota
	// TextureTypeHalfFloat stores 16-bit floats per channel.
	TextureTypeHalfFloat
	// TextureTypeFloat stores 32-bit floats per channel.
	TextureTypeFloat
)

// String returns the type name.
func (t TextureType) String() string {
	switch t {
	case TextureTypeUnsignedByte:
		return "unsigned_byte"
	case TextureTypeHalfFloat:
		return "half_float"
	case TextureTypeFloat:
		return "float"
	default:
		return "unknown"
	}
}

// nextTextureID hands out texture handles. Zero is never used.
var nextTextureID atomic.Uint64

// Texture is a CPU render target holding premultiplied RGBA values in
// [0, 1] as float32, four per texel, row-major.
//
// Every texture gets a new handle from ID, so a reallocated target is
// distinguishable from the one it replaced.
type Texture struct {
	id       uint64
	width    int
	height   int
	format   gputypes.TextureFormat
	typ      TextureType
	pix      []float32
	disposed bool
}

// NewTexture allocates a cleared texture. Sizes below 1 are raised to 1 and
// an undefined format becomes RGBA8Unorm.
func NewTexture(width, height int, format gputypes.TextureFormat, typ TextureType) *Texture {
	width = max(width, 1)
	height = max(height, 1)
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatRGBA8Unorm
	}

	return &Texture{
		id:     nextTextureID.Add(1),
		width:  width,
		height: height,
		format: format,
		typ:    typ,
		pix:    make([]float32, width*height*4),
	}
}

// NewTextureFromImage copies img into a new RGBA8Unorm texture.
func NewTextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	t := NewTexture(b.Dx(), b.Dy(), gputypes.TextureFormatRGBA8Unorm, TextureTypeUnsignedByte)

	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := (y*t.width + x) * 4
			t.pix[i+0] = float32(r) / 0xffff
			t.pix[i+1] = float32(g) / 0xffff
			t.pix[i+2] = float32(bl) / 0xffff
			t.pix[i+3] = float32(a) / 0xffff
		}
	}

	return t
}

// ID returns the texture handle.
func (t *Texture) ID() uint64 { return t.id }

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// Format returns the pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Type returns the channel storage type.
func (t *Texture) Type() TextureType { return t.typ }

// Disposed reports whether Dispose was called.
func (t *Texture) Disposed() bool { return t.disposed }

// Dispose releases the texel storage. A disposed texture must not be read.
func (t *Texture) Dispose() {
	t.disposed = true
	t.pix = nil
}

// OutputTexture returns t, so a plain texture can be bound anywhere a
// TextureSource is accepted.
func (t *Texture) OutputTexture() *Texture { return t }

// At returns the texel at (x, y), clamping coordinates to the edge.
func (t *Texture) At(x, y int) [4]float32 {
	x = clampIndex(x, t.width)
	y = clampIndex(y, t.height)
	i := (y*t.width + x) * 4
	return [4]float32{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

// Set stores c at (x, y) after converting it to the texture's format and
// type. Out of range coordinates are ignored.
func (t *Texture) Set(x, y int, c [4]float32) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}

	if t.format == gputypes.TextureFormatR8Unorm {
		c = [4]float32{c[0], 0, 0, 1}
	}

	if t.typ == TextureTypeUnsignedByte {
		for i := range c {
			c[i] = quantize8(c[i])
		}
	}

	i := (y*t.width + x) * 4
	t.pix[i+0] = c[0]
	t.pix[i+1] = c[1]
	t.pix[i+2] = c[2]
	t.pix[i+3] = c[3]
}

// Fill sets every texel to c.
func (t *Texture) Fill(c [4]float32) {
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			t.Set(x, y, c)
		}
	}
}

// Sample reads the texture at normalized coordinates (u, v) with
// clamp-to-edge addressing. FilterModeLinear interpolates the four nearest
// texels; any other mode returns the nearest texel.
func (t *Texture) Sample(u, v float32, mode gputypes.FilterMode) [4]float32 {
	if mode != gputypes.FilterModeLinear {
		x := int(math.Floor(float64(u) * float64(t.width)))
		y := int(math.Floor(float64(v) * float64(t.height)))
		return t.At(x, y)
	}

	fx := float64(u)*float64(t.width) - 0.5
	fy := float64(v)*float64(t.height) - 0.5
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	ax := float32(fx - x0)
	ay := float32(fy - y0)
	ix, iy := int(x0), int(y0)

	c00 := t.At(ix, iy)
	c10 := t.At(ix+1, iy)
	c01 := t.At(ix, iy+1)
	c11 := t.At(ix+1, iy+1)

	var out [4]float32
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*ax
		bottom := c01[i] + (c11[i]-c01[i])*ax
		out[i] = top + (bottom-top)*ay
	}
	return out
}

// Image exports the texture as 8-bit premultiplied RGBA.
func (t *Texture) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			c := t.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(c[0]),
				G: toByte(c[1]),
				B: toByte(c[2]),
				A: toByte(c[3]),
			})
		}
	}
	return img
}

// sampler adapts the texture to filter.Sampler with a fixed filter mode.
func (t *Texture) sampler(mode gputypes.FilterMode) filter.Sampler {
	return textureSampler{tex: t, mode: mode}
}

type textureSampler struct {
	tex  *Texture
	mode gputypes.FilterMode
}

func (s textureSampler) Sample(u, v float32) [4]float32 {
	return s.tex.Sample(u, v, s.mode)
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func quantize8(v float32) float32 {
	return float32(toByte(v)) / 255
}

// toByte clamps v to [0, 1] and rounds it to 8 bits.
func toByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
