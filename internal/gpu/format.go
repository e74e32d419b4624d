// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// deviceFormat returns the filterable device format mirroring a host
// format, with its size in bytes per pixel. 32-bit float data is stored as
// half floats since RGBA32Float is not filterable without an extension.
func deviceFormat(f gputypes.TextureFormat) (gputypes.TextureFormat, int) {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return gputypes.TextureFormatR8Unorm, 1
	case gputypes.TextureFormatRGBA16Float, gputypes.TextureFormatRGBA32Float:
		return gputypes.TextureFormatRGBA16Float, 8
	default:
		return gputypes.TextureFormatRGBA8Unorm, 4
	}
}

// encodeImage packs img in its device format, rows tightly packed.
func encodeImage(img Image) ([]byte, int) {
	format, bpp := deviceFormat(img.Format())
	w, h := img.Width(), img.Height()
	stride := w * bpp
	data := make([]byte, stride*h)

	for y := 0; y < h; y++ {
		row := data[y*stride : (y+1)*stride]
		for x := 0; x < w; x++ {
			c := img.At(x, y)
			px := row[x*bpp : (x+1)*bpp]
			switch format {
			case gputypes.TextureFormatR8Unorm:
				px[0] = unorm8(c[0])
			case gputypes.TextureFormatRGBA16Float:
				for i := range 4 {
					binary.LittleEndian.PutUint16(px[i*2:], halfBits(c[i]))
				}
			default:
				for i := range 4 {
					px[i] = unorm8(c[i])
				}
			}
		}
	}
	return data, stride
}

func unorm8(v float32) byte {
	switch {
	case v <= 0 || math.IsNaN(float64(v)):
		return 0
	case v >= 1:
		return 255
	}
	return byte(v*255 + 0.5)
}

// halfBits converts f to IEEE 754 binary16, truncating the mantissa.
func halfBits(f float32) uint16 {
	b := math.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	exp := int((b>>23)&0xff) - 127 + 15
	mant := b & 0x7fffff

	switch {
	case (b>>23)&0xff == 0xff:
		if mant != 0 {
			return sign | 0x7e00
		}
		return sign | 0x7c00
	case exp >= 0x1f:
		return sign | 0x7c00
	case exp <= 0:
		if exp < -10 {
			return sign
		}
		mant |= 0x800000
		return sign | uint16(mant>>uint(14-exp))
	}
	return sign | uint16(exp)<<10 | uint16(mant>>13)
}

// Uniforms packs values as consecutive little-endian f32 fields.
func Uniforms(values ...float32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}
