// Package filter holds the CPU side of the separable blur: the Gaussian
// tap table, linear-sampling tap merging, and the depth-aware weighting
// applied when a circle of confusion map is bound.
//
// A blur pass is described by a Pass value. Shade evaluates one output
// texel by walking the tap table along the blur axis:
//
//	sum(weight_i * attenuation_i * sample(source, uv + offset_i * delta))
//
// attenuation_i is 1 for an ordinary blur. With a CoC sampler attached it is
// DepthAttenuation(offset_i, coc(uv), coc(uv + offset_i * delta)) and the
// result is renormalized by the sum of the effective weights.
package filter
