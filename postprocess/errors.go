// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package postprocess

import "errors"

var (
	// ErrInvalidKernel is returned for a kernel size that is not a finite
	// value greater than zero.
	ErrInvalidKernel = errors.New("postprocess: kernel must be finite and greater than zero")

	// ErrInvalidDirection is returned for a blur direction that is zero or
	// has a non-finite component.
	ErrInvalidDirection = errors.New("postprocess: direction must be finite and non-zero")

	// ErrSamplerNotBound is returned at draw time when a kernel reads a
	// sampler slot nothing was bound to.
	ErrSamplerNotBound = errors.New("postprocess: sampler not bound")

	// ErrTextureDisposed is returned at draw time when a bound texture was
	// disposed before the draw.
	ErrTextureDisposed = errors.New("postprocess: bound texture is disposed")

	// ErrDisposed is returned by Apply on a disposed post-process.
	ErrDisposed = errors.New("postprocess: post-process is disposed")

	// ErrEmptyName is returned when a post-process is created without a name.
	ErrEmptyName = errors.New("postprocess: name must not be empty")
)
