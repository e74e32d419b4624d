// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu mirrors compiled pass programs onto a wgpu HAL device.
//
// Each program gets a shader module built from its SPIR-V, a bind group
// layout derived from its WGSL binding declarations, a pipeline layout and
// a uniform buffer. Every draw uploads the bound host textures into
// per-binding device textures and creates a fresh bind group, so the
// names a pass binds on the CPU side map onto real bind group entries.
package gpu
