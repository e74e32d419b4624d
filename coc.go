// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dof

import (
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dof/postprocess"
)

// DepthSampler is the sampler slot the CoC pass reads depth from.
const DepthSampler = "depthSampler"

// ClassNameCircleOfConfusion is the class name of CircleOfConfusion.
const ClassNameCircleOfConfusion = "CircleOfConfusionPostProcess"

func init() {
	postprocess.RegisterClass("dof."+ClassNameCircleOfConfusion, (*CircleOfConfusion)(nil))
}

// Lens describes the thin-lens camera model used to derive the circle of
// confusion. Distances are in millimeters except MinZ and MaxZ, which are
// the camera clip planes in scene units (meters).
type Lens struct {
	// FocalLength of the lens.
	FocalLength float64
	// FStop is the aperture number.
	FStop float64
	// FocusDistance is the distance in focus.
	FocusDistance float64
	// LensSize scales the blur. Larger is blurrier.
	LensSize float64
	// MinZ and MaxZ map normalized depth back to scene distance.
	MinZ, MaxZ float64
}

// DefaultLens returns a 50mm f/1.4 lens focused at 2m.
func DefaultLens() Lens {
	return Lens{
		FocalLength:   50,
		FStop:         1.4,
		FocusDistance: 2000,
		LensSize:      50,
		MinZ:          1,
		MaxZ:          10000,
	}
}

// precalculation returns the depth-independent part of the CoC formula.
func (l Lens) precalculation() float64 {
	aperture := l.LensSize / l.FStop
	return aperture * l.FocalLength / (l.FocusDistance - l.FocalLength)
}

// CoC returns the circle of confusion in [0, 1] for a normalized depth.
func (l Lens) CoC(depth float64) float64 {
	distance := (l.MinZ + (l.MaxZ-l.MinZ)*depth) * 1000
	if distance <= 0 {
		return 1
	}
	coc := math.Abs(l.precalculation() * (l.FocusDistance - distance) / distance)
	return min(max(coc, 0), 1)
}

// CircleOfConfusionConfig configures a CircleOfConfusion pass.
type CircleOfConfusionConfig struct {
	// Name identifies the pass. Defaults to "circleOfConfusion".
	Name string

	// Depth supplies a normalized depth map in the red channel.
	Depth postprocess.TextureSource

	// Lens model. The zero value selects DefaultLens.
	Lens Lens

	// Options for the pass target.
	Options postprocess.OptionsSource
}

// CircleOfConfusion converts a depth map into a CoC map. The output holds
// (coc, depth, coc, 1). The pipeline input is recorded so later passes can
// read the unblurred frame through InputSource.
type CircleOfConfusion struct {
	*postprocess.PostProcess

	lens  Lens
	depth postprocess.TextureSource
	input *postprocess.Texture
}

// NewCircleOfConfusion creates a CoC pass.
func NewCircleOfConfusion(cfg CircleOfConfusionConfig) (*CircleOfConfusion, error) {
	if cfg.Name == "" {
		cfg.Name = "circleOfConfusion"
	}
	if cfg.Lens == (Lens{}) {
		cfg.Lens = DefaultLens()
	}

	c := &CircleOfConfusion{lens: cfg.Lens}
	if !isNil(cfg.Depth) {
		c.depth = cfg.Depth
	}

	b := postprocess.NewOptionsBuilder(postprocess.Options{})
	if !isNil(cfg.Options) {
		b.Layer(cfg.Options)
	}

	pp, err := postprocess.NewPostProcess(cfg.Name, c.shade, nil, b.Build())
	if err != nil {
		return nil, err
	}
	pp.SetClassName(ClassNameCircleOfConfusion)
	pp.OnApply().Add(c.bind)
	c.PostProcess = pp

	return c, nil
}

// Lens returns the lens model.
func (c *CircleOfConfusion) Lens() Lens { return c.lens }

// SetLens replaces the lens model. It takes effect on the next draw.
func (c *CircleOfConfusion) SetLens(l Lens) { c.lens = l }

// SetDepth replaces the depth source.
func (c *CircleOfConfusion) SetDepth(src postprocess.TextureSource) { c.depth = src }

// InputTexture returns the input of the last draw, or nil.
func (c *CircleOfConfusion) InputTexture() *postprocess.Texture { return c.input }

// InputSource resolves to the input of the pass's latest draw.
func (c *CircleOfConfusion) InputSource() postprocess.TextureSource {
	return postprocess.SourceFunc(c.InputTexture)
}

func (c *CircleOfConfusion) bind(effect *postprocess.Effect) {
	if c.depth != nil {
		effect.BindTexture(DepthSampler, c.depth)
	}
}

func (c *CircleOfConfusion) shade(effect *postprocess.Effect, out *postprocess.Texture) error {
	if c.depth == nil {
		return ErrMissingDepth
	}
	depth, err := effect.Texture(DepthSampler)
	if err != nil {
		return err
	}
	input, err := effect.Texture(postprocess.SourceSampler)
	if err != nil {
		return err
	}
	c.input = input

	lens := c.lens
	w, h := out.Width(), out.Height()
	c.Engine().ForEachRow(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) / float32(h)
			for x := 0; x < w; x++ {
				u := (float32(x) + 0.5) / float32(w)
				d := depth.Sample(u, v, gputypes.FilterModeNearest)[0]
				coc := float32(lens.CoC(float64(d)))
				out.Set(x, y, [4]float32{coc, d, coc, 1})
			}
		}
	})
	return nil
}
