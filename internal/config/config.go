// Package config loads dofblur settings from files, the environment and
// command-line flags.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/dof"
)

// Config is the complete dofblur configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`

	Effect  EffectConfig  `mapstructure:"effect" yaml:"effect" json:"effect"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output" json:"output"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// EffectConfig holds the depth of field settings.
type EffectConfig struct {
	BlurLevel string `mapstructure:"blur_level" yaml:"blur_level" json:"blur_level"`

	FocalLength   float64 `mapstructure:"focal_length" yaml:"focal_length" json:"focal_length"`
	FStop         float64 `mapstructure:"f_stop" yaml:"f_stop" json:"f_stop"`
	FocusDistance float64 `mapstructure:"focus_distance" yaml:"focus_distance" json:"focus_distance"`
	LensSize      float64 `mapstructure:"lens_size" yaml:"lens_size" json:"lens_size"`
	MinZ          float64 `mapstructure:"min_z" yaml:"min_z" json:"min_z"`
	MaxZ          float64 `mapstructure:"max_z" yaml:"max_z" json:"max_z"`

	Workers          int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	ShaderCacheSize  int  `mapstructure:"shader_cache_size" yaml:"shader_cache_size" json:"shader_cache_size"`
	BlockCompilation bool `mapstructure:"block_compilation" yaml:"block_compilation" json:"block_compilation"`
}

// OutputConfig controls how results are written.
type OutputConfig struct {
	// Format overrides the format implied by the output file extension.
	Format      string `mapstructure:"format" yaml:"format" json:"format"`
	JPEGQuality int    `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
}

// MetricsConfig controls the metrics dump written after a run.
type MetricsConfig struct {
	// Path of the Prometheus text file. Empty disables the dump.
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	lens := dof.DefaultLens()
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Effect: EffectConfig{
			BlurLevel:     dof.BlurLevelMedium.String(),
			FocalLength:   lens.FocalLength,
			FStop:         lens.FStop,
			FocusDistance: lens.FocusDistance,
			LensSize:      lens.LensSize,
			MinZ:          lens.MinZ,
			MaxZ:          lens.MaxZ,
		},
		Output: OutputConfig{
			JPEGQuality: 95,
		},
	}
}

// Lens returns the lens model described by the effect settings.
func (e EffectConfig) Lens() dof.Lens {
	return dof.Lens{
		FocalLength:   e.FocalLength,
		FStop:         e.FStop,
		FocusDistance: e.FocusDistance,
		LensSize:      e.LensSize,
		MinZ:          e.MinZ,
		MaxZ:          e.MaxZ,
	}
}

var (
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validLogFormats   = []string{"text", "json"}
	validOutputFormat = []string{"", "png", "jpeg", "webp", "tga"}
)

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format: %s (must be one of: %s)", c.LogFormat, strings.Join(validLogFormats, ", "))
	}
	if _, err := dof.ParseBlurLevel(c.Effect.BlurLevel); err != nil {
		return fmt.Errorf("effect.blur_level: %w", err)
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"effect.focal_length", c.Effect.FocalLength},
		{"effect.f_stop", c.Effect.FStop},
		{"effect.lens_size", c.Effect.LensSize},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("invalid %s: %v (must be greater than 0)", p.name, p.value)
		}
	}
	if c.Effect.FocusDistance <= c.Effect.FocalLength {
		return fmt.Errorf("invalid effect.focus_distance: %v (must be greater than focal_length %v)",
			c.Effect.FocusDistance, c.Effect.FocalLength)
	}
	if c.Effect.MinZ < 0 || c.Effect.MaxZ <= c.Effect.MinZ {
		return fmt.Errorf("invalid clip range: min_z %v, max_z %v (need 0 <= min_z < max_z)", c.Effect.MinZ, c.Effect.MaxZ)
	}
	if c.Effect.Workers < 0 {
		return fmt.Errorf("invalid effect.workers: %d (must be 0 or more)", c.Effect.Workers)
	}
	if c.Effect.ShaderCacheSize < 0 {
		return fmt.Errorf("invalid effect.shader_cache_size: %d (must be 0 or more)", c.Effect.ShaderCacheSize)
	}

	if !slices.Contains(validOutputFormat, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validOutputFormat[1:], ", "))
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("invalid output.jpeg_quality: %d (must be between 1 and 100)", c.Output.JPEGQuality)
	}
	return nil
}
