package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "medium", cfg.Effect.BlurLevel)
	assert.Equal(t, 50.0, cfg.Effect.Lens().FocalLength)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "invalid log format"},
		{"bad blur level", func(c *Config) { c.Effect.BlurLevel = "extreme" }, "effect.blur_level"},
		{"zero f-stop", func(c *Config) { c.Effect.FStop = 0 }, "effect.f_stop"},
		{"focus inside lens", func(c *Config) { c.Effect.FocusDistance = 10 }, "effect.focus_distance"},
		{"inverted clip range", func(c *Config) { c.Effect.MaxZ = 0.5 }, "clip range"},
		{"negative workers", func(c *Config) { c.Effect.Workers = -1 }, "effect.workers"},
		{"bad output format", func(c *Config) { c.Output.Format = "bmp" }, "invalid output format"},
		{"bad jpeg quality", func(c *Config) { c.Output.JPEGQuality = 101 }, "jpeg_quality"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
