// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package postprocess

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dof/internal/filter"
	"github.com/gogpu/dof/internal/gpu"
	"github.com/gogpu/dof/internal/shader"
)

// CircleOfConfusionSampler is the sampler slot the blur reads the circle of
// confusion map from when the DefineDOF definition is present.
const CircleOfConfusionSampler = "circleOfConfusionSampler"

// DefineDOF enables depth-aware weighting in BlurPostProcess.
const DefineDOF = shader.DefineDOF

// Tap is one weighted sample of the blur tap table.
type Tap = filter.Tap

// AttenuationFunc scales a tap weight from the center and sample CoC.
type AttenuationFunc = filter.AttenuationFunc

// BlurPostProcess is a one-axis Gaussian blur.
type BlurPostProcess struct {
	*PostProcess

	direction   Vec2
	idealKernel float64
	kernel      int
	taps        []filter.Tap
	attenuate   filter.AttenuationFunc
}

// NewBlurPostProcess creates a blur along direction with the given kernel
// size. Kernel sizes are rounded to the nearest size whose center tap
// survives linear-sampling merging.
//
// It fails with ErrInvalidDirection or ErrInvalidKernel before allocating
// anything, and returns program compilation errors unchanged.
func NewBlurPostProcess(name string, direction Vec2, kernel float64, opts Options) (*BlurPostProcess, error) {
	if err := validateDirection(direction); err != nil {
		return nil, err
	}
	if err := validateKernel(kernel); err != nil {
		return nil, err
	}

	opts = opts.normalized()

	b := &BlurPostProcess{direction: direction}
	b.setKernel(kernel, opts.SamplingMode)

	pp, err := NewPostProcess(name, b.shade, b.programSource, opts)
	if err != nil {
		return nil, err
	}
	pp.className = "BlurPostProcess"
	b.PostProcess = pp

	return b, nil
}

func validateDirection(d Vec2) error {
	if !d.IsFinite() || d.IsZero() {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidDirection, d.X, d.Y)
	}
	return nil
}

func validateKernel(k float64) error {
	if math.IsNaN(k) || math.IsInf(k, 0) || k <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidKernel, k)
	}
	return nil
}

func (b *BlurPostProcess) setKernel(kernel float64, mode gputypes.FilterMode) {
	b.idealKernel = kernel
	b.kernel = filter.NearestBestKernel(kernel)
	b.taps = filter.BuildTaps(b.kernel)
	if mode == gputypes.FilterModeLinear {
		b.taps = filter.LinearSamplingTaps(b.taps)
	}
}

// Direction returns the blur axis in texels.
func (b *BlurPostProcess) Direction() Vec2 { return b.direction }

// Kernel returns the requested kernel size.
func (b *BlurPostProcess) Kernel() float64 { return b.idealKernel }

// EffectiveKernel returns the kernel size actually sampled.
func (b *BlurPostProcess) EffectiveKernel() int { return b.kernel }

// Taps returns a copy of the tap table.
func (b *BlurPostProcess) Taps() []Tap {
	return append([]Tap(nil), b.taps...)
}

// SetKernel changes the kernel size and recompiles the program if it was
// already compiled.
func (b *BlurPostProcess) SetKernel(kernel float64) error {
	if err := validateKernel(kernel); err != nil {
		return err
	}
	b.setKernel(kernel, b.SamplingMode())
	if b.effect.program != nil {
		return b.UpdateEffect(b.effect.defines)
	}
	return nil
}

// SetAttenuation replaces the depth attenuation curve used by the CPU
// kernel. Nil restores the default curve.
//
// fn is called from the engine's shading workers, one band of rows per
// worker, so it must be safe for concurrent use.
func (b *BlurPostProcess) SetAttenuation(fn AttenuationFunc) {
	b.attenuate = fn
}

func (b *BlurPostProcess) programSource(defines Defines) (string, error) {
	list := make([]shader.Define, 0, defines.Len())
	for _, n := range defines.Names() {
		v, _ := defines.Get(n)
		list = append(list, shader.Define{Name: n, Value: v})
	}
	return shader.KernelBlur(list, b.taps)
}

// shade runs the blur on the CPU: one filter.Pass per draw, rows split
// across the engine's workers.
func (b *BlurPostProcess) shade(effect *Effect, out *Texture) error {
	src, err := effect.Texture(SourceSampler)
	if err != nil {
		return err
	}

	mode := b.SamplingMode()
	w, h := out.Width(), out.Height()

	pass := &filter.Pass{
		Taps:      b.taps,
		DeltaU:    float32(b.direction.X / float64(w)),
		DeltaV:    float32(b.direction.Y / float64(h)),
		Source:    src.sampler(mode),
		Attenuate: b.attenuate,
	}

	effect.SetUniforms(gpu.Uniforms(pass.DeltaU, pass.DeltaV, 0, 0))

	if effect.defines.Has(DefineDOF) {
		coc, err := effect.Texture(CircleOfConfusionSampler)
		if err != nil {
			return err
		}
		pass.CoC = coc.sampler(mode)
	}

	b.engine.ForEachRow(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) / float32(h)
			for x := 0; x < w; x++ {
				u := (float32(x) + 0.5) / float32(w)
				out.Set(x, y, pass.Shade(u, v))
			}
		}
	})

	return nil
}
