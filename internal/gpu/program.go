// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dof/internal/shader"
)

// program holds the device objects of one compiled program.
type program struct {
	label    string
	source   string
	bindings []shader.Binding

	module         hal.ShaderModule
	layout         hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	uniforms       hal.Buffer
	pipelines      map[gputypes.TextureFormat]hal.RenderPipeline
	mirrors        map[string]*mirror
	group          hal.BindGroup
}

// mirror is the device copy of the host texture bound to one binding.
type mirror struct {
	texture hal.Texture
	view    hal.TextureView
	width   int
	height  int
	format  gputypes.TextureFormat
}

func newProgram(device hal.Device, p *shader.Program) (*program, error) {
	prog := &program{
		label:     fmt.Sprintf("dof_%016x", p.Key),
		source:    p.Source,
		bindings:  p.Bindings,
		pipelines: make(map[gputypes.TextureFormat]hal.RenderPipeline),
		mirrors:   make(map[string]*mirror),
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  prog.label,
		Source: hal.ShaderSource{SPIRV: p.Words()},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module %s: %w", prog.label, err)
	}
	prog.module = module

	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   prog.label + "_bgl",
		Entries: layoutEntries(prog.bindings),
	})
	if err != nil {
		prog.release(device)
		return nil, fmt.Errorf("gpu: create bind group layout %s: %w", prog.label, err)
	}
	prog.layout = layout

	pipelineLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            prog.label + "_pl",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		prog.release(device)
		return nil, fmt.Errorf("gpu: create pipeline layout %s: %w", prog.label, err)
	}
	prog.pipelineLayout = pipelineLayout

	uniforms, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: prog.label + "_uniforms",
		Size:  UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		prog.release(device)
		return nil, fmt.Errorf("gpu: create uniform buffer %s: %w", prog.label, err)
	}
	prog.uniforms = uniforms

	return prog, nil
}

// layoutEntries maps declared bindings onto fragment-stage layout entries.
func layoutEntries(bindings []shader.Binding) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(bindings))
	for _, b := range bindings {
		e := gputypes.BindGroupLayoutEntry{
			Binding:    b.Slot,
			Visibility: gputypes.ShaderStageFragment,
		}
		switch b.Kind {
		case shader.BindingUniform:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
		case shader.BindingTexture:
			e.Texture = &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			}
		case shader.BindingSampler:
			e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
		}
		entries = append(entries, e)
	}
	return entries
}

// pipelineFor returns the render pipeline drawing into target, creating it
// on first use.
func (p *program) pipelineFor(device hal.Device, target gputypes.TextureFormat) (hal.RenderPipeline, error) {
	format, _ := deviceFormat(target)
	if pl, ok := p.pipelines[format]; ok {
		return pl, nil
	}

	pl, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.label,
		Layout: p.pipelineLayout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create render pipeline %s: %w", p.label, err)
	}
	p.pipelines[format] = pl
	return pl, nil
}

// upload copies img into the mirror of binding name, reallocating the
// mirror when the size or format changed.
func (p *program) upload(device hal.Device, queue hal.Queue, name string, img Image) (*mirror, error) {
	format, _ := deviceFormat(img.Format())
	w, h := img.Width(), img.Height()

	m := p.mirrors[name]
	if m == nil || m.width != w || m.height != h || m.format != format {
		if m != nil {
			m.release(device)
		}

		tex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         p.label + "_" + name,
			Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		})
		if err != nil {
			delete(p.mirrors, name)
			return nil, fmt.Errorf("gpu: create texture %s: %w", name, err)
		}

		view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:           p.label + "_" + name + "_view",
			Format:          format,
			Dimension:       gputypes.TextureViewDimension2D,
			Aspect:          gputypes.TextureAspectAll,
			MipLevelCount:   1,
			ArrayLayerCount: 1,
		})
		if err != nil {
			device.DestroyTexture(tex)
			delete(p.mirrors, name)
			return nil, fmt.Errorf("gpu: create texture view %s: %w", name, err)
		}

		m = &mirror{texture: tex, view: view, width: w, height: h, format: format}
		p.mirrors[name] = m
	}

	data, bytesPerRow := encodeImage(img)
	err := queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  m.texture,
			MipLevel: 0,
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(bytesPerRow),
			RowsPerImage: uint32(h),
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return nil, fmt.Errorf("gpu: write texture %s: %w", name, err)
	}
	return m, nil
}

func (m *mirror) release(device hal.Device) {
	if m.view != nil {
		device.DestroyTextureView(m.view)
	}
	if m.texture != nil {
		device.DestroyTexture(m.texture)
	}
}

// release destroys every object p holds, including partially created ones.
func (p *program) release(device hal.Device) {
	if p.group != nil {
		device.DestroyBindGroup(p.group)
		p.group = nil
	}
	for name, m := range p.mirrors {
		m.release(device)
		delete(p.mirrors, name)
	}
	for format, pl := range p.pipelines {
		device.DestroyRenderPipeline(pl)
		delete(p.pipelines, format)
	}
	if p.uniforms != nil {
		device.DestroyBuffer(p.uniforms)
		p.uniforms = nil
	}
	if p.pipelineLayout != nil {
		device.DestroyPipelineLayout(p.pipelineLayout)
		p.pipelineLayout = nil
	}
	if p.layout != nil {
		device.DestroyBindGroupLayout(p.layout)
		p.layout = nil
	}
	if p.module != nil {
		device.DestroyShaderModule(p.module)
		p.module = nil
	}
}
