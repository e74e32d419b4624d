// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package postprocess

import (
	"fmt"
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dof/internal/gpu"
	"github.com/gogpu/dof/internal/metrics"
	"github.com/gogpu/dof/internal/parallel"
	"github.com/gogpu/dof/internal/shader"
)

// ShaderCompiler turns WGSL source into SPIR-V.
type ShaderCompiler = shader.Compiler

// ShaderCompilerFunc adapts a function to ShaderCompiler.
type ShaderCompilerFunc = shader.CompilerFunc

// CacheStats reports compiled-program cache activity.
type CacheStats = shader.Stats

// Device mirrors compiled programs and per-draw bindings onto a wgpu HAL
// device.
type Device = gpu.Device

// DeviceBindGroup records the bind group of one draw on a Device.
type DeviceBindGroup = gpu.BindGroup

// OpenDevice opens a Device on the first adapter of backend.
func OpenDevice(backend hal.Backend) (*Device, error) {
	return gpu.Open(backend)
}

// NewDevice wraps an existing HAL device and queue.
func NewDevice(device hal.Device, queue hal.Queue) (*Device, error) {
	return gpu.New(device, queue)
}

// Engine compiles pass programs and runs pass kernels.
//
// An Engine owns a worker pool; call Close when it is no longer needed.
// Engine is safe for concurrent use.
type Engine struct {
	programs *shader.Cache
	pool     *parallel.WorkerPool
	device   *Device
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	compiler  ShaderCompiler
	workers   int
	cacheSize int
	device    *Device
}

// WithShaderCompiler replaces the naga compiler.
func WithShaderCompiler(c ShaderCompiler) EngineOption {
	return func(o *engineOptions) {
		o.compiler = c
	}
}

// WithWorkers sets the number of shading workers. Zero or negative means
// GOMAXPROCS.
func WithWorkers(n int) EngineOption {
	return func(o *engineOptions) {
		o.workers = n
	}
}

// WithProgramCacheSize sets how many compiled programs are kept.
func WithProgramCacheSize(n int) EngineOption {
	return func(o *engineOptions) {
		o.cacheSize = n
	}
}

// WithDevice mirrors every compiled program and draw onto d. The engine
// does not destroy d.
func WithDevice(d *Device) EngineOption {
	return func(o *engineOptions) {
		o.device = d
	}
}

// NewEngine creates an engine.
//
// Example:
//
//	engine := postprocess.NewEngine(postprocess.WithWorkers(4))
//	defer engine.Close()
func NewEngine(opts ...EngineOption) *Engine {
	o := engineOptions{compiler: shader.Naga}
	for _, opt := range opts {
		opt(&o)
	}
	if o.compiler == nil {
		o.compiler = shader.Naga
	}

	return &Engine{
		programs: shader.NewCache(o.compiler, o.cacheSize),
		pool:     parallel.NewWorkerPool(o.workers),
		device:   o.device,
	}
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// DefaultEngine returns the shared engine used by options without an Engine.
// It is created on first use and never closed.
func DefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine()
	})
	return defaultEngine
}

// Compile returns the compiled program for source, from cache when possible.
// Compiler errors are returned as the compiler reported them.
func (e *Engine) Compile(source string) (*Program, error) {
	p, cached, err := e.programs.Get(source)
	switch {
	case err != nil:
		metrics.RecordCompilation("error")
		slogger().Warn("shader compilation failed", "err", err)
		return nil, err
	case cached:
		metrics.RecordCompilation("cached")
	default:
		metrics.RecordCompilation("compiled")
		slogger().Debug("shader compiled", "key", p.Key, "spirv_bytes", len(p.SPIRV))
	}

	if e.device != nil {
		if err := e.device.Prepare(p); err != nil {
			return nil, fmt.Errorf("prepare program on device: %w", err)
		}
	}
	return p, nil
}

// Device returns the device the engine mirrors onto, or nil.
func (e *Engine) Device() *Device { return e.device }

// ProgramCacheStats returns compiled-program cache statistics.
func (e *Engine) ProgramCacheStats() CacheStats {
	return e.programs.Stats()
}

// Workers returns the number of shading workers.
func (e *Engine) Workers() int {
	return e.pool.Workers()
}

// ForEachRow calls fn for contiguous bands covering rows [0, height) in
// parallel and returns when every band is done. Bands never overlap.
func (e *Engine) ForEachRow(height int, fn func(y0, y1 int)) {
	e.pool.ForEachBand(height, fn)
}

// Close stops the worker pool. Passes using a closed engine still run,
// on the calling goroutine.
func (e *Engine) Close() {
	e.pool.Close()
}
