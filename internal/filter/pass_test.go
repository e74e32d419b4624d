package filter

import (
	"math"
	"testing"
)

type samplerFunc func(u, v float32) [4]float32

func (f samplerFunc) Sample(u, v float32) [4]float32 { return f(u, v) }

func constant(c float32) samplerFunc {
	return func(float32, float32) [4]float32 { return [4]float32{c, c, c, 1} }
}

// halfPlane returns left for u < 0.5 and right otherwise.
func halfPlane(left, right float32) samplerFunc {
	return func(u, _ float32) [4]float32 {
		if u < 0.5 {
			return [4]float32{left, left, left, 1}
		}
		return [4]float32{right, right, right, 1}
	}
}

func newTestPass(source, coc Sampler) *Pass {
	return &Pass{
		Taps:   LinearSamplingTaps(BuildTaps(NearestBestKernel(15))),
		DeltaU: 1.0 / 64,
		Source: source,
		CoC:    coc,
	}
}

func TestPassShadeFlatCoCMatchesPlainBlur(t *testing.T) {
	source := halfPlane(1, 0)

	plain := newTestPass(source, nil).Shade(0.51, 0.5)
	aware := newTestPass(source, constant(0.4)).Shade(0.51, 0.5)

	for i := range plain {
		if math.Abs(float64(plain[i]-aware[i])) > 1e-4 {
			t.Errorf("channel %d: depth-aware %v, plain %v", i, aware[i], plain[i])
		}
	}
}

func TestPassShadeBlocksBackgroundBleed(t *testing.T) {
	// Out-of-focus bright background on the left, focused dark foreground
	// on the right. Sample just right of the silhouette edge.
	source := halfPlane(1, 0)
	coc := halfPlane(1, 0)
	u := float32(0.5 + 0.5/64)

	plain := newTestPass(source, nil).Shade(u, 0.5)
	if plain[0] <= 0 {
		t.Fatalf("plain blur red = %v, expected bleed from the left half", plain[0])
	}

	aware := newTestPass(source, coc).Shade(u, 0.5)
	if aware[0] != 0 {
		t.Errorf("depth-aware red = %v, want 0 (no background bleed)", aware[0])
	}
}

func TestPassShadeCallsAttenuationPerTap(t *testing.T) {
	p := newTestPass(constant(0.5), constant(0.3))

	var offsets []float32
	p.Attenuate = func(offset, center, sample float32) float32 {
		offsets = append(offsets, offset)
		return DepthAttenuation(offset, center, sample)
	}

	p.Shade(0.5, 0.5)

	if len(offsets) != len(p.Taps) {
		t.Fatalf("attenuation called %d times, want %d", len(offsets), len(p.Taps))
	}
	for i, tap := range p.Taps {
		if offsets[i] != tap.Offset {
			t.Errorf("call %d offset = %v, want %v", i, offsets[i], tap.Offset)
		}
	}
}

func TestPassShadeAllRejectedFallsBackToCenter(t *testing.T) {
	p := &Pass{
		Taps:      []Tap{{Offset: -1, Weight: 0.5}, {Offset: 1, Weight: 0.5}},
		DeltaU:    0.1,
		Source:    constant(0.25),
		CoC:       constant(0),
		Attenuate: func(float32, float32, float32) float32 { return 0 },
	}

	got := p.Shade(0.5, 0.5)
	if got[0] != 0.25 {
		t.Errorf("Shade = %v, want center sample 0.25", got)
	}
}
