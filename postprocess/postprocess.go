// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package postprocess

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dof/internal/metrics"
)

// SourceSampler is the sampler slot a pass reads its input image from.
const SourceSampler = "textureSampler"

// Kernel shades the output target of one draw from the textures bound on
// the effect.
type Kernel func(effect *Effect, output *Texture) error

// ProgramSource renders the GPU program of a pass for a definition set.
// CPU-only passes have no ProgramSource.
type ProgramSource func(defines Defines) (string, error)

// PostProcess is one screen-space pass with its own output target.
type PostProcess struct {
	name      string
	className string
	options   Options
	engine    *Engine
	effect    *Effect
	kernel    Kernel
	program   ProgramSource

	targets [2]*Texture
	current int

	externalBinding bool
	onApply         Observable[*Effect]
	disposed        bool
}

// NewPostProcess creates a pass. Unless opts.BlockCompilation is set, the
// program is compiled immediately and compilation errors are returned as
// the engine's compiler reported them.
func NewPostProcess(name string, kernel Kernel, program ProgramSource, opts Options) (*PostProcess, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if kernel == nil {
		return nil, fmt.Errorf("postprocess %q: nil kernel", name)
	}

	opts = opts.normalized()

	pp := &PostProcess{
		name:      name,
		className: "PostProcess",
		options:   opts,
		engine:    opts.Engine,
		effect:    newEffect(name, opts.Defines),
		kernel:    kernel,
		program:   program,
	}

	if program == nil {
		pp.effect.ready = true
	} else if !opts.BlockCompilation {
		if err := pp.UpdateEffect(opts.Defines); err != nil {
			return nil, err
		}
	}

	if opts.Camera != nil {
		opts.Camera.attach(pp)
	}

	slogger().Debug("post-process created",
		"name", name,
		"ratio", opts.Ratio,
		"format", opts.TextureFormat,
		"deferred", opts.BlockCompilation && program != nil)

	return pp, nil
}

// Name returns the pass name.
func (pp *PostProcess) Name() string { return pp.name }

// ClassName returns the pass class, used for metrics labels and logs.
func (pp *PostProcess) ClassName() string { return pp.className }

// SetClassName renames the pass class. Types embedding a pass call it
// from their constructor.
func (pp *PostProcess) SetClassName(name string) { pp.className = name }

// Options returns a copy of the merged options the pass was created with.
func (pp *PostProcess) Options() Options { return pp.options.PostProcessOptions() }

// Engine returns the engine the pass runs on.
func (pp *PostProcess) Engine() *Engine { return pp.engine }

// Camera returns the camera the pass is attached to, or nil.
func (pp *PostProcess) Camera() *Camera { return pp.options.Camera }

// Effect returns the pass binding context.
func (pp *PostProcess) Effect() *Effect { return pp.effect }

// SamplingMode returns the filter used to read the pass input.
func (pp *PostProcess) SamplingMode() gputypes.FilterMode { return pp.options.SamplingMode }

// OnApply returns the observers notified before every draw, after the
// default input binding.
func (pp *PostProcess) OnApply() *Observable[*Effect] { return &pp.onApply }

// ExternalTextureSamplerBinding reports whether the pass binds its own
// "textureSampler" instead of receiving the pipeline input there.
func (pp *PostProcess) ExternalTextureSamplerBinding() bool { return pp.externalBinding }

// SetExternalTextureSamplerBinding sets the flag reported by
// ExternalTextureSamplerBinding.
func (pp *PostProcess) SetExternalTextureSamplerBinding(external bool) {
	pp.externalBinding = external
}

// OutputTexture returns the target written by the last draw, or nil before
// the first draw.
func (pp *PostProcess) OutputTexture() *Texture { return pp.targets[pp.current] }

// IsReady reports whether the pass can draw without compiling first.
func (pp *PostProcess) IsReady() bool { return pp.effect.IsReady() }

// IsDisposed reports whether Dispose was called.
func (pp *PostProcess) IsDisposed() bool { return pp.disposed }

// UpdateEffect replaces the effect definitions and compiles the program
// for them. On error the previous program stays in place.
func (pp *PostProcess) UpdateEffect(defines Defines) error {
	if pp.program == nil {
		pp.effect.defines = defines.Clone()
		pp.effect.ready = true
		return nil
	}

	source, err := pp.program(defines)
	if err != nil {
		return err
	}

	prog, err := pp.engine.Compile(source)
	if err != nil {
		return err
	}

	pp.effect.defines = defines.Clone()
	pp.effect.program = prog
	pp.effect.ready = true
	return nil
}

// Apply draws the pass once with input as its default source and returns
// the output target.
func (pp *PostProcess) Apply(input *Texture) (*Texture, error) {
	if pp.disposed {
		return nil, fmt.Errorf("%w: %s", ErrDisposed, pp.name)
	}

	start := time.Now()
	out, err := pp.draw(input)
	metrics.RecordApply(pp.className, time.Since(start).Seconds(), err)
	if err != nil {
		slogger().Warn("post-process draw failed", "name", pp.name, "err", err)
	}
	return out, err
}

func (pp *PostProcess) draw(input *Texture) (*Texture, error) {
	if !pp.effect.IsReady() {
		if err := pp.UpdateEffect(pp.effect.defines); err != nil {
			return nil, err
		}
	}

	w, h := pp.outputSize(input)
	out := pp.nextTarget(w, h)

	pp.effect.resetBindings()
	if !pp.externalBinding {
		pp.effect.BindTexture(SourceSampler, input)
	}
	pp.onApply.Notify(pp.effect)

	if err := pp.kernel(pp.effect, out); err != nil {
		return nil, fmt.Errorf("postprocess %q: %w", pp.name, err)
	}
	if err := pp.effect.bindDevice(pp.engine.Device(), out); err != nil {
		return nil, fmt.Errorf("postprocess %q: %w", pp.name, err)
	}
	return out, nil
}

// outputSize resolves the target size: the explicit size, else ratio times
// the camera viewport, else ratio times the input size.
func (pp *PostProcess) outputSize(input *Texture) (int, int) {
	if pp.options.Width > 0 && pp.options.Height > 0 {
		return pp.options.Width, pp.options.Height
	}

	w, h := 1, 1
	switch {
	case pp.options.Camera != nil:
		w, h = pp.options.Camera.Width(), pp.options.Camera.Height()
	case input != nil:
		w, h = input.Width(), input.Height()
	}

	return max(1, int(float64(w)*pp.options.Ratio)), max(1, int(float64(h)*pp.options.Ratio))
}

// nextTarget returns the target for this draw, reallocating it when the
// size changed. Reusable passes alternate between two targets.
func (pp *PostProcess) nextTarget(w, h int) *Texture {
	idx := pp.current
	if pp.options.Reusable {
		idx ^= 1
	}

	t := pp.targets[idx]
	if t == nil || t.Width() != w || t.Height() != h {
		if t != nil {
			t.Dispose()
		}
		t = NewTexture(w, h, pp.options.TextureFormat, pp.options.TextureType)
		pp.targets[idx] = t
		metrics.RecordAllocation()
		slogger().Debug("render target allocated", "name", pp.name, "width", w, "height", h, "texture", t.ID())
	}

	pp.current = idx
	return t
}

// Dispose releases the output targets, detaches the pass from its camera
// and drops every OnApply observer. Dispose is idempotent.
func (pp *PostProcess) Dispose() {
	if pp.disposed {
		return
	}
	pp.disposed = true

	for i, t := range pp.targets {
		if t != nil {
			t.Dispose()
			pp.targets[i] = nil
		}
	}
	if pp.options.Camera != nil {
		pp.options.Camera.detach(pp)
	}
	pp.onApply.Clear()
}
