// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dof

import (
	"errors"
	"fmt"

	"github.com/gogpu/dof/postprocess"
)

var (
	// ErrMissingCircleOfConfusion is returned when a blur stage is created
	// without a circle of confusion source.
	ErrMissingCircleOfConfusion = errors.New("dof: circle of confusion source is required")

	// ErrMissingDepth is returned when a CoC pass draws without a depth map.
	ErrMissingDepth = errors.New("dof: depth source is required")

	// ErrInvalidBlurLevel is returned for a blur level outside
	// BlurLevelLow..BlurLevelHigh.
	ErrInvalidBlurLevel = errors.New("dof: unknown blur level")

	// ErrEmptyName is returned when a stage is created without a name.
	ErrEmptyName = postprocess.ErrEmptyName
)

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dof: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
