// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dof

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dof/postprocess"
)

// BlurLevel selects how many blur stages the effect runs.
type BlurLevel int

const (
	// BlurLevelLow runs one vertical and one horizontal blur.
	BlurLevelLow BlurLevel = iota
	// BlurLevelMedium runs two blur pairs.
	BlurLevelMedium
	// BlurLevelHigh runs three blur pairs.
	BlurLevelHigh
)

// String returns the level name.
func (l BlurLevel) String() string {
	switch l {
	case BlurLevelLow:
		return "low"
	case BlurLevelMedium:
		return "medium"
	case BlurLevelHigh:
		return "high"
	default:
		return fmt.Sprintf("BlurLevel(%d)", int(l))
	}
}

// ParseBlurLevel parses "low", "medium" or "high".
func ParseBlurLevel(s string) (BlurLevel, error) {
	for _, l := range []BlurLevel{BlurLevelLow, BlurLevelMedium, BlurLevelHigh} {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidBlurLevel, s)
}

// blurPairs returns the number of blur pairs and the base kernel size.
func (l BlurLevel) blurPairs() (int, float64) {
	switch l {
	case BlurLevelMedium:
		return 2, 31
	case BlurLevelHigh:
		return 3, 51
	default:
		return 1, 15
	}
}

// EffectConfig configures an Effect.
type EffectConfig struct {
	// Name prefixes the pass names. Defaults to "depthOfField".
	Name string

	Scene *postprocess.Scene

	// Camera the passes attach to. Blur ratios are relative to its
	// viewport. Nil makes the effect own a camera that follows the size
	// of each rendered frame.
	Camera *postprocess.Camera

	// Depth supplies the normalized depth map. It can be set later with
	// SetDepth.
	Depth postprocess.TextureSource

	BlurLevel BlurLevel

	// Lens model. The zero value selects DefaultLens.
	Lens Lens

	// TextureType of the CoC and blur targets.
	TextureType postprocess.TextureType

	Engine           *postprocess.Engine
	BlockCompilation bool
}

// Effect chains CoC, depth-aware blurs and merge into one pipeline.
//
// The first vertical blur reads the original frame (the CoC pass input).
// Each later blur reads the previous blur, at a lower ratio. The merge
// mixes the original frame with every horizontal blur output by CoC.
type Effect struct {
	name     string
	camera   *postprocess.Camera
	ownCam   bool
	level    BlurLevel
	coc      *CircleOfConfusion
	blurY    []*DepthOfFieldBlurPostProcess
	blurX    []*DepthOfFieldBlurPostProcess
	merge    *Merge
	pipeline *postprocess.Pipeline
}

// NewEffect builds the passes for cfg. On error, every pass created so far
// is disposed.
func NewEffect(cfg EffectConfig) (_ *Effect, err error) {
	if cfg.BlurLevel < BlurLevelLow || cfg.BlurLevel > BlurLevelHigh {
		return nil, &ConfigError{Field: "BlurLevel", Err: fmt.Errorf("%w: %d", ErrInvalidBlurLevel, int(cfg.BlurLevel))}
	}
	if cfg.Name == "" {
		cfg.Name = "depthOfField"
	}

	e := &Effect{name: cfg.Name, level: cfg.BlurLevel, camera: cfg.Camera}
	if e.camera == nil {
		e.camera = postprocess.NewCamera(cfg.Name, 1, 1)
		e.ownCam = true
	}
	cfg.Camera = e.camera
	defer func() {
		if err != nil {
			e.Dispose()
		}
	}()

	base := postprocess.Options{
		Camera:           cfg.Camera,
		Engine:           cfg.Engine,
		BlockCompilation: cfg.BlockCompilation,
	}

	cocOpts := base
	cocOpts.TextureType = cfg.TextureType
	e.coc, err = NewCircleOfConfusion(CircleOfConfusionConfig{
		Name:    cfg.Name + ".circleOfConfusion",
		Depth:   cfg.Depth,
		Lens:    cfg.Lens,
		Options: cocOpts,
	})
	if err != nil {
		return nil, err
	}

	pairs, kernel := cfg.BlurLevel.blurPairs()
	kernel /= math.Pow(2, float64(pairs-1))

	ratio := 1.0
	for i := 0; i < pairs; i++ {
		var image postprocess.TextureSource
		if i == 0 {
			image = e.coc.InputSource()
		}

		y, err := NewDepthOfFieldBlurPostProcess(BlurConfig{
			Name:              fmt.Sprintf("%s.verticalBlur%d", cfg.Name, i),
			Scene:             cfg.Scene,
			Direction:         postprocess.V2(0, 1),
			Kernel:            kernel,
			Options:           postprocess.Ratio(ratio),
			Camera:            cfg.Camera,
			CircleOfConfusion: e.coc,
			ImageToBlur:       image,
			Engine:            cfg.Engine,
			TextureType:       cfg.TextureType,
			BlockCompilation:  cfg.BlockCompilation,
		})
		if err != nil {
			return nil, err
		}
		e.blurY = append(e.blurY, y)

		ratio = 0.75 / math.Pow(2, float64(i))

		x, err := NewDepthOfFieldBlurPostProcess(BlurConfig{
			Name:              fmt.Sprintf("%s.horizontalBlur%d", cfg.Name, i),
			Scene:             cfg.Scene,
			Direction:         postprocess.V2(1, 0),
			Kernel:            kernel,
			Options:           postprocess.Ratio(ratio),
			Camera:            cfg.Camera,
			CircleOfConfusion: e.coc,
			Engine:            cfg.Engine,
			TextureType:       cfg.TextureType,
			BlockCompilation:  cfg.BlockCompilation,
		})
		if err != nil {
			return nil, err
		}
		e.blurX = append(e.blurX, x)
	}

	steps := make([]postprocess.TextureSource, len(e.blurX))
	for i, x := range e.blurX {
		steps[i] = x
	}

	e.merge, err = NewMerge(MergeConfig{
		Name:              cfg.Name + ".merge",
		Original:          e.coc.InputSource(),
		CircleOfConfusion: e.coc,
		BlurSteps:         steps,
		Options:           base,
	})
	if err != nil {
		return nil, err
	}

	passes := []postprocess.Pass{e.coc}
	for i := range e.blurY {
		passes = append(passes, e.blurY[i], e.blurX[i])
	}
	e.pipeline = postprocess.NewPipeline(cfg.Name, passes...)

	Logger().Info("depth of field effect created",
		"name", cfg.Name,
		"blur_level", cfg.BlurLevel,
		"blur_pairs", pairs,
		"kernel", kernel)

	return e, nil
}

// Name returns the effect name.
func (e *Effect) Name() string { return e.name }

// BlurLevel returns the configured blur level.
func (e *Effect) BlurLevel() BlurLevel { return e.level }

// CircleOfConfusion returns the CoC pass.
func (e *Effect) CircleOfConfusion() *CircleOfConfusion { return e.coc }

// Merge returns the merge pass.
func (e *Effect) Merge() *Merge { return e.merge }

// VerticalBlurs returns the vertical blur stages in run order.
func (e *Effect) VerticalBlurs() []*DepthOfFieldBlurPostProcess {
	return append([]*DepthOfFieldBlurPostProcess(nil), e.blurY...)
}

// HorizontalBlurs returns the horizontal blur stages in run order.
func (e *Effect) HorizontalBlurs() []*DepthOfFieldBlurPostProcess {
	return append([]*DepthOfFieldBlurPostProcess(nil), e.blurX...)
}

// Passes returns every pass in run order, merge last.
func (e *Effect) Passes() []postprocess.Pass {
	return append(e.pipeline.Passes(), e.merge)
}

// SetDepth replaces the depth source of the CoC pass.
func (e *Effect) SetDepth(src postprocess.TextureSource) { e.coc.SetDepth(src) }

// SetLens replaces the lens model of the CoC pass.
func (e *Effect) SetLens(l Lens) { e.coc.SetLens(l) }

// Camera returns the camera the passes are attached to.
func (e *Effect) Camera() *postprocess.Camera { return e.camera }

// Render runs every pass on frame and returns the merged output.
func (e *Effect) Render(frame *postprocess.Texture) (*postprocess.Texture, error) {
	if e.ownCam && frame != nil {
		e.camera.Resize(frame.Width(), frame.Height())
	}
	last, err := e.pipeline.Render(frame)
	if err != nil {
		return nil, err
	}
	out, err := e.merge.Apply(last)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", e.name, err)
	}
	return out, nil
}

// Dispose releases every pass. Dispose is idempotent.
func (e *Effect) Dispose() {
	if e.merge != nil {
		e.merge.Dispose()
	}
	for _, x := range e.blurX {
		x.Dispose()
	}
	for _, y := range e.blurY {
		y.Dispose()
	}
	if e.coc != nil {
		e.coc.Dispose()
	}
}

// NewDepthTexture converts a depth image into a normalized depth texture
// holding depth in the red channel.
func NewDepthTexture(depth *postprocess.Texture) *postprocess.Texture {
	out := postprocess.NewTexture(depth.Width(), depth.Height(), gputypes.TextureFormatR8Unorm, postprocess.TextureTypeFloat)
	for y := 0; y < depth.Height(); y++ {
		for x := 0; x < depth.Width(); x++ {
			c := depth.At(x, y)
			out.Set(x, y, [4]float32{(c[0] + c[1] + c[2]) / 3, 0, 0, 1})
		}
	}
	return out
}
