// Package shader generates the WGSL kernel-blur program, compiles it to
// SPIR-V with naga and caches compiled programs by source.
//
// The CPU engine in package filter and the WGSL program implement the same
// tap walk and the same depth attenuation curve, so a frame shaded on either
// path matches within filtering precision.
package shader
