package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := `
log_level: debug
effect:
  blur_level: high
  f_stop: 2.8
output:
  format: webp
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l := NewLoader()
	cfg, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "high", cfg.Effect.BlurLevel)
	assert.Equal(t, 2.8, cfg.Effect.FStop)
	assert.Equal(t, 50.0, cfg.Effect.FocalLength)
	assert.Equal(t, "webp", cfg.Output.Format)
	assert.Equal(t, path, l.ConfigFileUsed())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("effect:\n  blur_level: extreme\n"), 0o644))

	_, err := NewLoader().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DOFBLUR_EFFECT_BLUR_LEVEL", "low")
	t.Setenv("DOFBLUR_LOG_FORMAT", "json")

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, "low", cfg.Effect.BlurLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestBindFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("blur-level", "", "")
	require.NoError(t, fs.Parse([]string{"--blur-level=high"}))

	l := NewLoader()
	require.NoError(t, l.BindFlag("effect.blur_level", fs.Lookup("blur-level")))
	assert.Error(t, l.BindFlag("effect.f_stop", fs.Lookup("missing")))

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "high", cfg.Effect.BlurLevel)
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dofblur.yaml")
	want := DefaultConfig()
	want.Effect.BlurLevel = "low"

	require.NoError(t, WriteFile(path, want, false))
	assert.Error(t, WriteFile(path, want, false), "must not overwrite")
	require.NoError(t, WriteFile(path, want, true))

	got, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}
