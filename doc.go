// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package dof implements a depth-of-field effect as a chain of screen-space
// passes.
//
// # Overview
//
// The effect computes a circle of confusion (CoC) per pixel from a depth
// map, blurs the frame with separable depth-aware blurs, and mixes the
// blurred levels back into the original frame by CoC.
//
// The core stage is [DepthOfFieldBlurPostProcess]: a one-axis Gaussian blur
// that scales every tap by how close its CoC is to the center pixel's CoC.
// Out-of-focus background therefore does not bleed over an in-focus
// foreground edge.
//
// # Quick Start
//
//	import "github.com/gogpu/dof"
//
//	cam := postprocess.NewCamera("main", 1280, 720)
//	fx, err := dof.NewEffect(dof.EffectConfig{
//	    Camera:    cam,
//	    Depth:     depthTexture,
//	    BlurLevel: dof.BlurLevelMedium,
//	})
//	if err != nil {
//	    return err
//	}
//	defer fx.Dispose()
//
//	out, err := fx.Render(frame)
//
// # Single stages
//
// A blur stage can be used on its own. It needs a CoC source and, when it
// should blur something other than its pipeline input, an image source:
//
//	blur, err := dof.NewDepthOfFieldBlurPostProcess(dof.BlurConfig{
//	    Name:              "vertical blur",
//	    Direction:         postprocess.V2(0, 1),
//	    Kernel:            15,
//	    Options:           postprocess.Ratio(1),
//	    CircleOfConfusion: coc,
//	})
//
// Both sources are resolved on every draw, so a CoC pass that reallocates
// its target is picked up on the next frame.
//
// # Execution
//
// Passes run on the CPU, rows split across the engine's worker pool. Each
// blur also generates its WGSL program and compiles it with naga, so the
// program a GPU backend would run is validated alongside the CPU result.
//
// # Logging
//
// The package is silent by default. Call [SetLogger] to receive structured
// logs from dof and postprocess.
package dof
