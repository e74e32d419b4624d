// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dof

import (
	"reflect"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dof/postprocess"
)

// ClassNameBlur is the class name of DepthOfFieldBlurPostProcess, also its
// key in the postprocess class registry.
const ClassNameBlur = "DepthOfFieldBlurPostProcess"

func init() {
	postprocess.RegisterClass("dof."+ClassNameBlur, (*DepthOfFieldBlurPostProcess)(nil))
}

// BlurConfig configures a DepthOfFieldBlurPostProcess.
type BlurConfig struct {
	// Name identifies the stage. Required.
	Name string

	// Scene is accepted for uniformity with the other stages and not read.
	Scene *postprocess.Scene

	// Direction is the blur axis in texels, e.g. (1, 0) or (0, 1).
	Direction postprocess.Vec2

	// Kernel is the requested kernel size. It must be finite and positive.
	Kernel float64

	// Options is either postprocess.Ratio or a full postprocess.Options.
	// Fields it sets win over the fields below, except that the DOF define
	// and bilinear sampling are always forced.
	Options postprocess.OptionsSource

	// Camera the stage attaches to.
	Camera *postprocess.Camera

	// CircleOfConfusion supplies the CoC map. Required. It is resolved on
	// every draw.
	CircleOfConfusion postprocess.TextureSource

	// ImageToBlur, when set, replaces the pipeline input as the image the
	// stage blurs. It is resolved on every draw.
	ImageToBlur postprocess.TextureSource

	// Engine compiles and runs the stage. Nil selects the default engine.
	Engine *postprocess.Engine

	// Reusable keeps two output targets.
	Reusable bool

	// TextureType of the output target.
	TextureType postprocess.TextureType

	// TextureFormat of the output target. Unset means RGBA8Unorm.
	TextureFormat gputypes.TextureFormat

	// BlockCompilation defers program compilation to the first draw.
	BlockCompilation bool
}

// DepthOfFieldBlurPostProcess is a one-axis blur whose taps are weighted by
// circle of confusion similarity to the center pixel.
//
// Every draw binds ImageToBlur (if configured) to "textureSampler" and the
// CoC source to "circleOfConfusionSampler", after the default input
// binding. Sources are never cached across draws. The external binding flag
// and the binding observer are fixed at construction.
type DepthOfFieldBlurPostProcess struct {
	blur *postprocess.BlurPostProcess

	coc         postprocess.TextureSource
	imageToBlur postprocess.TextureSource
	observer    *postprocess.Observer[*postprocess.Effect]

	// onApply runs after the stage's own bindings on every draw.
	onApply postprocess.Observable[*postprocess.Effect]
}

// NewDepthOfFieldBlurPostProcess creates a depth-aware blur stage.
//
// A missing CoC source or name fails with a *ConfigError before anything is
// allocated. Kernel and direction validation errors, and program compilation
// errors, come from the underlying blur and are returned unchanged.
func NewDepthOfFieldBlurPostProcess(cfg BlurConfig) (*DepthOfFieldBlurPostProcess, error) {
	if cfg.Name == "" {
		return nil, &ConfigError{Field: "Name", Err: ErrEmptyName}
	}
	if isNil(cfg.CircleOfConfusion) {
		return nil, &ConfigError{Field: "CircleOfConfusion", Err: ErrMissingCircleOfConfusion}
	}

	opts := mergeBlurOptions(cfg)

	blur, err := postprocess.NewBlurPostProcess(cfg.Name, cfg.Direction, cfg.Kernel, opts)
	if err != nil {
		return nil, err
	}
	blur.SetClassName(ClassNameBlur)

	p := &DepthOfFieldBlurPostProcess{
		blur: blur,
		coc:  cfg.CircleOfConfusion,
	}
	if !isNil(cfg.ImageToBlur) {
		p.imageToBlur = cfg.ImageToBlur
	}
	blur.SetExternalTextureSamplerBinding(p.imageToBlur != nil)

	p.observer = blur.OnApply().Add(p.bind)

	Logger().Info("depth of field blur created",
		"name", cfg.Name,
		"direction", cfg.Direction,
		"kernel", blur.EffectiveKernel(),
		"external_source", p.imageToBlur != nil)

	return p, nil
}

// mergeBlurOptions layers the config fields under the caller's options,
// then pins the fields the depth-aware kernel depends on.
func mergeBlurOptions(cfg BlurConfig) postprocess.Options {
	base := postprocess.Options{
		Camera:           cfg.Camera,
		Engine:           cfg.Engine,
		Reusable:         cfg.Reusable,
		TextureType:      cfg.TextureType,
		TextureFormat:    cfg.TextureFormat,
		BlockCompilation: cfg.BlockCompilation,
	}

	b := postprocess.NewOptionsBuilder(base)
	if !isNil(cfg.Options) {
		b.Layer(cfg.Options)
	}
	return b.
		Force(postprocess.ForceDefine(postprocess.DefineDOF, "1")).
		Force(postprocess.ForceSamplingMode(gputypes.FilterModeLinear)).
		Build()
}

func (p *DepthOfFieldBlurPostProcess) bind(effect *postprocess.Effect) {
	if p.imageToBlur != nil {
		effect.BindTexture(postprocess.SourceSampler, p.imageToBlur)
	}
	effect.BindTexture(postprocess.CircleOfConfusionSampler, p.coc)
	p.onApply.Notify(effect)
}

// Name returns the stage name.
func (p *DepthOfFieldBlurPostProcess) Name() string { return p.blur.Name() }

// ClassName returns "DepthOfFieldBlurPostProcess".
func (p *DepthOfFieldBlurPostProcess) ClassName() string { return p.blur.ClassName() }

// Apply draws the stage over input and returns its output texture.
func (p *DepthOfFieldBlurPostProcess) Apply(input *postprocess.Texture) (*postprocess.Texture, error) {
	return p.blur.Apply(input)
}

// OutputTexture returns the target of the latest draw, or nil.
func (p *DepthOfFieldBlurPostProcess) OutputTexture() *postprocess.Texture {
	return p.blur.OutputTexture()
}

// ExternalTextureSamplerBinding reports whether the stage binds
// "textureSampler" itself, i.e. whether ImageToBlur was supplied.
func (p *DepthOfFieldBlurPostProcess) ExternalTextureSamplerBinding() bool {
	return p.blur.ExternalTextureSamplerBinding()
}

// Direction returns the blur axis.
func (p *DepthOfFieldBlurPostProcess) Direction() postprocess.Vec2 { return p.blur.Direction() }

// Kernel returns the requested kernel size.
func (p *DepthOfFieldBlurPostProcess) Kernel() float64 { return p.blur.Kernel() }

// EffectiveKernel returns the kernel size the weight table was built for.
func (p *DepthOfFieldBlurPostProcess) EffectiveKernel() int { return p.blur.EffectiveKernel() }

// Taps returns a copy of the weight table.
func (p *DepthOfFieldBlurPostProcess) Taps() []postprocess.Tap { return p.blur.Taps() }

// Options returns the merged options.
func (p *DepthOfFieldBlurPostProcess) Options() postprocess.Options { return p.blur.Options() }

// SamplingMode returns the sampling mode, always bilinear.
func (p *DepthOfFieldBlurPostProcess) SamplingMode() gputypes.FilterMode {
	return p.blur.SamplingMode()
}

// Camera returns the camera the stage is attached to, or nil.
func (p *DepthOfFieldBlurPostProcess) Camera() *postprocess.Camera { return p.blur.Camera() }

// Effect returns the binding context of the stage.
func (p *DepthOfFieldBlurPostProcess) Effect() *postprocess.Effect { return p.blur.Effect() }

// Defines returns the definitions the stage's program was built with.
func (p *DepthOfFieldBlurPostProcess) Defines() postprocess.Defines {
	return p.blur.Effect().Defines()
}

// OnApply returns the list notified on every draw, after the stage has
// bound its sources. Observers added here can inspect or add bindings;
// the stage's own binding cannot be removed through it.
func (p *DepthOfFieldBlurPostProcess) OnApply() *postprocess.Observable[*postprocess.Effect] {
	return &p.onApply
}

// IsReady reports whether the stage can draw without compiling first.
func (p *DepthOfFieldBlurPostProcess) IsReady() bool { return p.blur.IsReady() }

// IsDisposed reports whether Dispose was called.
func (p *DepthOfFieldBlurPostProcess) IsDisposed() bool { return p.blur.IsDisposed() }

// Dispose unregisters the binding observer and releases the blur. Dispose
// is idempotent.
func (p *DepthOfFieldBlurPostProcess) Dispose() {
	if p.observer != nil {
		p.blur.OnApply().Remove(p.observer)
		p.observer = nil
	}
	p.onApply.Clear()
	p.blur.Dispose()
}

// isNil reports whether v is nil or an interface holding a nil pointer,
// func, map, slice, chan or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
