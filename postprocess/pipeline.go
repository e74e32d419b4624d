// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package postprocess

import "fmt"

// Pass is a stage a Pipeline can run.
type Pass interface {
	Name() string
	Apply(input *Texture) (*Texture, error)
	OutputTexture() *Texture
	ExternalTextureSamplerBinding() bool
	Dispose()
}

// Pipeline runs passes in order, feeding each pass the previous output.
// Passes with an external source binding still receive the previous output
// (it sizes their target) but bind their own source image.
type Pipeline struct {
	name   string
	passes []Pass
}

// NewPipeline creates a pipeline from passes.
func NewPipeline(name string, passes ...Pass) *Pipeline {
	return &Pipeline{name: name, passes: passes}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Add appends passes.
func (p *Pipeline) Add(passes ...Pass) {
	p.passes = append(p.passes, passes...)
}

// Passes returns the passes in run order.
func (p *Pipeline) Passes() []Pass {
	return append([]Pass(nil), p.passes...)
}

// Render draws every pass once and returns the last output. With no passes
// it returns input.
func (p *Pipeline) Render(input *Texture) (*Texture, error) {
	cur := input
	for i, pass := range p.passes {
		out, err := pass.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: pass %d (%s): %w", p.name, i, pass.Name(), err)
		}
		slogger().Debug("pass drawn",
			"pipeline", p.name,
			"pass", pass.Name(),
			"external_source", pass.ExternalTextureSamplerBinding(),
			"texture", out.ID())
		cur = out
	}
	return cur, nil
}

// Dispose disposes every pass.
func (p *Pipeline) Dispose() {
	for _, pass := range p.passes {
		pass.Dispose()
	}
}
