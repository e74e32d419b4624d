// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

// Sampler reads a filtered RGBA value at normalized texture coordinates.
type Sampler interface {
	Sample(u, v float32) [4]float32
}

// Pass describes one directional convolution.
type Pass struct {
	// Taps is the weighted sample table along the blur axis.
	Taps []Tap

	// DeltaU and DeltaV convert a tap offset in texels into a UV step.
	DeltaU, DeltaV float32

	// Source is the image being blurred.
	Source Sampler

	// CoC enables depth-aware weighting when non-nil. Only the red
	// channel is read.
	CoC Sampler

	// Attenuate overrides DepthAttenuation. Nil selects the default.
	Attenuate AttenuationFunc
}

// Shade evaluates the convolution for the texel at (u, v).
func (p *Pass) Shade(u, v float32) [4]float32 {
	var blend [4]float32

	if p.CoC == nil {
		for _, tap := range p.Taps {
			c := p.Source.Sample(u+tap.Offset*p.DeltaU, v+tap.Offset*p.DeltaV)
			blend[0] += c[0] * tap.Weight
			blend[1] += c[1] * tap.Weight
			blend[2] += c[2] * tap.Weight
			blend[3] += c[3] * tap.Weight
		}
		return blend
	}

	attenuate := p.Attenuate
	if attenuate == nil {
		attenuate = DepthAttenuation
	}

	center := p.CoC.Sample(u, v)[0]
	var sum float32

	for _, tap := range p.Taps {
		su := u + tap.Offset*p.DeltaU
		sv := v + tap.Offset*p.DeltaV

		w := tap.Weight * attenuate(tap.Offset, center, p.CoC.Sample(su, sv)[0])
		if w == 0 {
			continue
		}

		c := p.Source.Sample(su, sv)
		blend[0] += c[0] * w
		blend[1] += c[1] * w
		blend[2] += c[2] * w
		blend[3] += c[3] * w
		sum += w
	}

	// Every tap rejected, possible only with a custom attenuation: fall
	// back to the unblurred center.
	if sum <= 0 {
		return p.Source.Sample(u, v)
	}

	inv := 1 / sum
	blend[0] *= inv
	blend[1] *= inv
	blend[2] *= inv
	blend[3] *= inv
	return blend
}
