package filter

import "math"

// MinCoCThreshold is the smallest CoC difference at which a sample is fully
// rejected. It keeps in-focus centers (CoC near 0) from dividing by zero.
const MinCoCThreshold float32 = 0.05

// AttenuationFunc scales a tap's base weight from the circle of confusion at
// the center texel and at the sampled texel. Passes call it from several
// goroutines at once.
type AttenuationFunc func(offset, centerCoC, sampleCoC float32) float32

// DepthAttenuation suppresses samples that sit across a depth discontinuity.
//
// The factor is 1 - smoothstep(0, t, |centerCoC - sampleCoC|) with
// t = max(|centerCoC|, MinCoCThreshold): 1 for equal CoC values, falling
// monotonically to 0 once the difference reaches the local CoC magnitude.
// The center tap (offset 0) is never attenuated.
func DepthAttenuation(offset, centerCoC, sampleCoC float32) float32 {
	if offset == 0 {
		return 1
	}

	d := math.Abs(float64(centerCoC) - float64(sampleCoC))
	if math.IsNaN(d) {
		return 0
	}
	if d == 0 {
		return 1
	}

	threshold := math.Max(math.Abs(float64(centerCoC)), float64(MinCoCThreshold))
	return float32(1 - smoothstep(0, threshold, d))
}

// smoothstep is the GLSL/WGSL Hermite step.
func smoothstep(edge0, edge1, x float64) float64 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
