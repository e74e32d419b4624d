// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dof/internal/shader"
)

var (
	// ErrNoAdapter is returned by Open when the backend exposes no adapter.
	ErrNoAdapter = errors.New("gpu: no adapter available")

	// ErrDestroyed is returned when a destroyed device is used.
	ErrDestroyed = errors.New("gpu: device destroyed")

	// ErrUnboundTexture is returned by Bind when a texture binding the
	// program declares has no image.
	ErrUnboundTexture = errors.New("gpu: texture binding has no image")

	// ErrUniformsTooLarge is returned by Bind when the uniform block does
	// not fit the program's uniform buffer.
	ErrUniformsTooLarge = errors.New("gpu: uniform block too large")
)

// UniformSize is the size in bytes of every program's uniform buffer.
const UniformSize = 16

// Image is a host texture uploaded to the device before a draw.
type Image interface {
	ID() uint64
	Width() int
	Height() int
	Format() gputypes.TextureFormat
	At(x, y int) [4]float32
}

// Draw describes the resources of one pass draw.
type Draw struct {
	Label    string
	Target   gputypes.TextureFormat
	Textures map[string]Image
	Uniforms []byte
}

// BoundEntry is one entry of a bind group.
type BoundEntry struct {
	Binding shader.Binding

	// Image is the host texture mirrored into a texture entry, zero for
	// other kinds.
	Image uint64
}

// BindGroup records the bind group created for a draw.
type BindGroup struct {
	Label   string
	Program uint64
	Target  gputypes.TextureFormat
	Entries []BoundEntry
}

// Texture returns the host texture ID bound to name, if any.
func (g *BindGroup) Texture(name string) (uint64, bool) {
	for _, e := range g.Entries {
		if e.Binding.Name == name && e.Binding.Kind == shader.BindingTexture {
			return e.Image, true
		}
	}
	return 0, false
}

// Device mirrors compiled programs and their per-draw bindings onto a HAL
// device. Device is safe for concurrent use.
type Device struct {
	mu        sync.Mutex
	instance  hal.Instance // set when Open created the device
	device    hal.Device
	queue     hal.Queue
	sampler   hal.Sampler
	programs  map[uint64]*program
	destroyed bool
}

// Open creates a device on the first adapter of backend.
//
// Example:
//
//	dev, err := gpu.Open(noop.API{})
//	if err != nil {
//	    return err
//	}
//	defer dev.Destroy()
func Open(backend hal.Backend) (*Device, error) {
	instance, err := backend.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open adapter %q: %w", adapters[0].Info.Name, err)
	}

	d, err := New(open.Device, open.Queue)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance

	slogger().Info("gpu: device opened", "adapter", adapters[0].Info.Name)
	return d, nil
}

// New wraps an existing device and queue. Destroy releases only the
// resources New and later calls created.
func New(device hal.Device, queue hal.Queue) (*Device, error) {
	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "dof_linear_clamp",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create sampler: %w", err)
	}

	return &Device{
		device:   device,
		queue:    queue,
		sampler:  sampler,
		programs: make(map[uint64]*program),
	}, nil
}

// HAL returns the wrapped device.
func (d *Device) HAL() hal.Device { return d.device }

// Programs returns how many programs are resident.
func (d *Device) Programs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.programs)
}

// Prepare creates the shader module and layouts of p. Preparing a
// resident program is a no-op.
func (d *Device) Prepare(p *shader.Program) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.resident(p)
	return err
}

// Bind uploads the textures and uniforms of one draw and creates the bind
// group for p, replacing the previous one.
func (d *Device) Bind(p *shader.Program, draw Draw) (*BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prog, err := d.resident(p)
	if err != nil {
		return nil, err
	}

	if _, err := prog.pipelineFor(d.device, draw.Target); err != nil {
		return nil, err
	}

	record := &BindGroup{Label: draw.Label, Program: p.Key, Target: draw.Target}
	entries := make([]gputypes.BindGroupEntry, 0, len(prog.bindings))

	for _, b := range prog.bindings {
		bound := BoundEntry{Binding: b}

		switch b.Kind {
		case shader.BindingUniform:
			if len(draw.Uniforms) > UniformSize {
				return nil, fmt.Errorf("%w: %d bytes", ErrUniformsTooLarge, len(draw.Uniforms))
			}
			if len(draw.Uniforms) > 0 {
				if err := d.queue.WriteBuffer(prog.uniforms, 0, draw.Uniforms); err != nil {
					return nil, fmt.Errorf("gpu: write %s: %w", b.Name, err)
				}
			}
			entries = append(entries, gputypes.BindGroupEntry{Binding: b.Slot, Resource: gputypes.BufferBinding{
				Buffer: prog.uniforms.NativeHandle(), Offset: 0, Size: UniformSize,
			}})

		case shader.BindingSampler:
			entries = append(entries, gputypes.BindGroupEntry{Binding: b.Slot, Resource: gputypes.SamplerBinding{
				Sampler: d.sampler.NativeHandle(),
			}})

		case shader.BindingTexture:
			img := draw.Textures[b.Name]
			if img == nil {
				return nil, fmt.Errorf("%w: %s", ErrUnboundTexture, b.Name)
			}
			m, err := prog.upload(d.device, d.queue, b.Name, img)
			if err != nil {
				return nil, err
			}
			bound.Image = img.ID()
			entries = append(entries, gputypes.BindGroupEntry{Binding: b.Slot, Resource: gputypes.TextureViewBinding{
				TextureView: m.view.NativeHandle(),
			}})
		}

		record.Entries = append(record.Entries, bound)
	}

	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   draw.Label + "_bind",
		Layout:  prog.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create bind group for %s: %w", draw.Label, err)
	}
	if prog.group != nil {
		d.device.DestroyBindGroup(prog.group)
	}
	prog.group = group

	return record, nil
}

// Evict releases the resources of p. Evicting a program that is not
// resident is a no-op.
func (d *Device) Evict(p *shader.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prog, ok := d.programs[p.Key]; ok && prog.source == p.Source {
		prog.release(d.device)
		delete(d.programs, p.Key)
	}
}

// Destroy releases every resource the device created. Devices from Open
// are closed as well. Destroy is idempotent.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroyed {
		return
	}
	d.destroyed = true

	for key, prog := range d.programs {
		prog.release(d.device)
		delete(d.programs, key)
	}
	d.device.DestroySampler(d.sampler)

	if d.instance != nil {
		d.device.Destroy()
		d.instance.Destroy()
	}
}

// resident returns the device objects of p, creating them on first use.
// The caller holds d.mu.
func (d *Device) resident(p *shader.Program) (*program, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}

	if prog, ok := d.programs[p.Key]; ok {
		if prog.source == p.Source {
			return prog, nil
		}
		prog.release(d.device)
		delete(d.programs, p.Key)
	}

	prog, err := newProgram(d.device, p)
	if err != nil {
		return nil, err
	}
	d.programs[p.Key] = prog

	slogger().Debug("gpu: program resident",
		"key", p.Key,
		"bindings", len(prog.bindings),
		"spirv_words", len(p.SPIRV)/4)
	return prog, nil
}
