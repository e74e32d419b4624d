// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package postprocess provides the frame-level machinery a screen-space
// effect stage runs on: render targets, option merging, per-draw texture
// binding, shader program compilation and a CPU separable-blur engine.
//
// # Passes
//
// A PostProcess owns an output render target and an Effect. Each call to
// Apply is one draw:
//
//  1. the output target is (re)allocated if the required size changed,
//  2. the pass input is bound to the "textureSampler" slot, unless the pass
//     declared an external source binding,
//  3. every observer registered on OnApply runs and may bind more textures,
//  4. the pass kernel shades the output from the bound textures,
//  5. with an engine built WithDevice, passes with a program mirror the
//     draw onto the device: bound textures are uploaded and a bind group
//     keyed by the slot names is created.
//
// Bindings only live for one draw. Observers must bind again on every
// Apply, which keeps passes correct when upstream targets are reallocated.
//
// # Blur
//
// BlurPostProcess is a one-axis Gaussian blur. It builds a tap table from a
// kernel size, merges taps for bilinear sampling, emits a WGSL program for
// the GPU path and shades the same taps on the CPU through the Engine's
// worker pool. When the "DOF" define is present it also reads the
// "circleOfConfusionSampler" slot and attenuates taps across depth edges.
//
// # Threading
//
// Passes, effects and observables are single-threaded: the frame driver
// calls Apply and the observers on one goroutine. Only the row shading
// inside a single Apply fans out to the worker pool.
package postprocess
