// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dof

import (
	"fmt"
	"strconv"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dof/postprocess"
)

// MaxBlurSteps is the largest number of blur levels Merge can mix.
const MaxBlurSteps = 3

// ClassNameMerge is the class name of Merge.
const ClassNameMerge = "DepthOfFieldMergePostProcess"

func init() {
	postprocess.RegisterClass("dof."+ClassNameMerge, (*Merge)(nil))
}

// mergeBreaks are the CoC values at which the mix moves from one level to
// the next, indexed by the number of blur steps.
var mergeBreaks = [MaxBlurSteps + 1][]float32{
	1: {0, 1},
	2: {0, 0.5, 1},
	3: {0, 0.33, 0.66, 1},
}

// BlurStepSampler returns the sampler slot of blur step i. Step 0 is the
// most blurred level.
func BlurStepSampler(i int) string {
	return "blurStep" + strconv.Itoa(i)
}

// MergeConfig configures a Merge pass.
type MergeConfig struct {
	// Name identifies the pass. Defaults to "dofMerge".
	Name string

	// Original supplies the unblurred frame.
	Original postprocess.TextureSource

	// CircleOfConfusion supplies the CoC map.
	CircleOfConfusion postprocess.TextureSource

	// BlurSteps supplies the blurred levels from least to most blurred.
	// One to MaxBlurSteps entries.
	BlurSteps []postprocess.TextureSource

	// Options for the pass target.
	Options postprocess.OptionsSource
}

// Merge mixes the original frame with progressively blurrier levels by CoC:
// CoC 0 keeps the original, CoC 1 takes the most blurred level.
type Merge struct {
	*postprocess.PostProcess

	original postprocess.TextureSource
	coc      postprocess.TextureSource
	steps    []postprocess.TextureSource
}

// NewMerge creates a merge pass.
func NewMerge(cfg MergeConfig) (*Merge, error) {
	if cfg.Name == "" {
		cfg.Name = "dofMerge"
	}
	if isNil(cfg.CircleOfConfusion) {
		return nil, &ConfigError{Field: "CircleOfConfusion", Err: ErrMissingCircleOfConfusion}
	}
	if len(cfg.BlurSteps) == 0 || len(cfg.BlurSteps) > MaxBlurSteps {
		return nil, &ConfigError{
			Field: "BlurSteps",
			Err:   fmt.Errorf("need 1 to %d blur steps, got %d", MaxBlurSteps, len(cfg.BlurSteps)),
		}
	}

	m := &Merge{
		coc:   cfg.CircleOfConfusion,
		steps: append([]postprocess.TextureSource(nil), cfg.BlurSteps...),
	}
	if !isNil(cfg.Original) {
		m.original = cfg.Original
	}

	b := postprocess.NewOptionsBuilder(postprocess.Options{})
	if !isNil(cfg.Options) {
		b.Layer(cfg.Options)
	}
	b.Force(postprocess.ForceDefine("BLUR_LEVEL", strconv.Itoa(len(m.steps)-1)))

	pp, err := postprocess.NewPostProcess(cfg.Name, m.shade, nil, b.Build())
	if err != nil {
		return nil, err
	}
	pp.SetClassName(ClassNameMerge)
	pp.SetExternalTextureSamplerBinding(m.original != nil)
	pp.OnApply().Add(m.bind)
	m.PostProcess = pp

	return m, nil
}

// BlurLevel returns the index of the most blurred level.
func (m *Merge) BlurLevel() int { return len(m.steps) - 1 }

func (m *Merge) bind(effect *postprocess.Effect) {
	if m.original != nil {
		effect.BindTexture(postprocess.SourceSampler, m.original)
	}
	effect.BindTexture(postprocess.CircleOfConfusionSampler, m.coc)

	// blurStep0 is the last, most blurred, step.
	n := len(m.steps)
	for i, step := range m.steps {
		effect.BindTexture(BlurStepSampler(n-i-1), step)
	}
}

func (m *Merge) shade(effect *postprocess.Effect, out *postprocess.Texture) error {
	original, err := effect.Texture(postprocess.SourceSampler)
	if err != nil {
		return err
	}
	coc, err := effect.Texture(postprocess.CircleOfConfusionSampler)
	if err != nil {
		return err
	}

	// levels runs from sharp to blurry: original, blurStep{n-1}, ..., blurStep0.
	n := len(m.steps)
	levels := make([]*postprocess.Texture, 0, n+1)
	levels = append(levels, original)
	for i := n - 1; i >= 0; i-- {
		tex, err := effect.Texture(BlurStepSampler(i))
		if err != nil {
			return err
		}
		levels = append(levels, tex)
	}
	breaks := mergeBreaks[n]

	w, h := out.Width(), out.Height()
	m.Engine().ForEachRow(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) / float32(h)
			for x := 0; x < w; x++ {
				u := (float32(x) + 0.5) / float32(w)
				c := coc.Sample(u, v, gputypes.FilterModeLinear)[0]
				out.Set(x, y, mixLevels(levels, breaks, c, u, v))
			}
		}
	})
	return nil
}

// mixLevels interpolates between the two levels whose breaks enclose coc.
func mixLevels(levels []*postprocess.Texture, breaks []float32, coc, u, v float32) [4]float32 {
	coc = min(max(coc, 0), 1)

	i := 0
	for i < len(breaks)-2 && coc >= breaks[i+1] {
		i++
	}
	t := (coc - breaks[i]) / (breaks[i+1] - breaks[i])

	a := levels[i].Sample(u, v, gputypes.FilterModeLinear)
	b := levels[i+1].Sample(u, v, gputypes.FilterModeLinear)

	var out [4]float32
	for k := range out {
		out[k] = a[k] + (b[k]-a[k])*t
	}
	return out
}
