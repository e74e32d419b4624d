// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package postprocess

import (
	"fmt"

	"github.com/gogpu/dof/internal/gpu"
	"github.com/gogpu/dof/internal/metrics"
	"github.com/gogpu/dof/internal/shader"
)

// Program is a compiled shader program.
type Program = shader.Program

// BindCall records one texture binding issued during a draw.
type BindCall struct {
	Sampler string
	Texture *Texture
}

// Effect is the binding context of a post-process: its definitions, its
// compiled program and the textures bound for the current draw.
//
// Bindings are cleared before each draw. BindTexture resolves the source
// immediately, so the draw sees the texture that was current at bind time.
type Effect struct {
	name     string
	defines  Defines
	program  *Program
	ready    bool
	bindings map[string]*Texture
	calls    []BindCall
	uniforms []byte
	group    *DeviceBindGroup
}

func newEffect(name string, defines Defines) *Effect {
	return &Effect{
		name:     name,
		defines:  defines.Clone(),
		bindings: make(map[string]*Texture),
	}
}

// Name returns the name of the owning post-process.
func (e *Effect) Name() string { return e.name }

// Defines returns a copy of the effect definitions.
func (e *Effect) Defines() Defines { return e.defines.Clone() }

// Program returns the compiled program, or nil for CPU-only passes and
// passes whose compilation is still deferred.
func (e *Effect) Program() *Program { return e.program }

// IsReady reports whether the effect can draw without compiling first.
func (e *Effect) IsReady() bool { return e.ready }

// BindTexture binds the texture src currently resolves to the sampler
// slot. A later binding of the same slot within the draw replaces it.
func (e *Effect) BindTexture(sampler string, src TextureSource) {
	var tex *Texture
	if src != nil {
		tex = src.OutputTexture()
	}

	e.bindings[sampler] = tex
	e.calls = append(e.calls, BindCall{Sampler: sampler, Texture: tex})
	metrics.RecordBinding(sampler)
}

// Texture returns the texture bound to sampler for this draw.
// It fails with ErrSamplerNotBound or ErrTextureDisposed.
func (e *Effect) Texture(sampler string) (*Texture, error) {
	tex := e.bindings[sampler]
	if tex == nil {
		return nil, fmt.Errorf("%w: %s", ErrSamplerNotBound, sampler)
	}
	if tex.Disposed() {
		return nil, fmt.Errorf("%w: %s (texture %d)", ErrTextureDisposed, sampler, tex.ID())
	}
	return tex, nil
}

// BindCalls returns the bindings issued during the current draw, in order.
func (e *Effect) BindCalls() []BindCall {
	return append([]BindCall(nil), e.calls...)
}

// SetUniforms sets the uniform block written to the device for this draw.
func (e *Effect) SetUniforms(data []byte) {
	e.uniforms = append(e.uniforms[:0], data...)
}

// DeviceBindGroup returns the bind group of the latest successful draw on
// the engine's device, or nil without a device.
func (e *Effect) DeviceBindGroup() *DeviceBindGroup { return e.group }

// resetBindings starts a new draw.
func (e *Effect) resetBindings() {
	clear(e.bindings)
	e.calls = e.calls[:0]
	e.uniforms = e.uniforms[:0]
	e.group = nil
}

// bindDevice mirrors the draw onto the engine's device. Passes without a
// compiled program have nothing to mirror.
func (e *Effect) bindDevice(device *Device, target *Texture) error {
	if device == nil || e.program == nil {
		return nil
	}

	textures := make(map[string]gpu.Image, len(e.bindings))
	for name, tex := range e.bindings {
		if tex != nil {
			textures[name] = tex
		}
	}

	group, err := device.Bind(e.program, gpu.Draw{
		Label:    e.name,
		Target:   target.Format(),
		Textures: textures,
		Uniforms: e.uniforms,
	})
	if err != nil {
		return err
	}
	e.group = group
	return nil
}
