package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "dofblur"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "DOFBLUR"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with its own viper instance.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load reads the first dofblur config file found in the search paths,
// or only defaults and environment variables when there is none. A
// non-empty configFile is read instead of searching.
func (l *Loader) Load(configFile string) (*Config, error) {
	l.setupEnvironmentVariables()
	l.setDefaults()

	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// BindFlag binds a command-line flag to a configuration key.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for config key %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

// ConfigFileUsed returns the path of the config file read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Viper returns the underlying viper instance.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "dofblur"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "dofblur"))
	}
}

// setupEnvironmentVariables maps DOFBLUR_EFFECT_BLUR_LEVEL to
// effect.blur_level and so on.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers every key so environment variables and Unmarshal
// see it even without a config file.
func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("log_format", d.LogFormat)

	l.v.SetDefault("effect.blur_level", d.Effect.BlurLevel)
	l.v.SetDefault("effect.focal_length", d.Effect.FocalLength)
	l.v.SetDefault("effect.f_stop", d.Effect.FStop)
	l.v.SetDefault("effect.focus_distance", d.Effect.FocusDistance)
	l.v.SetDefault("effect.lens_size", d.Effect.LensSize)
	l.v.SetDefault("effect.min_z", d.Effect.MinZ)
	l.v.SetDefault("effect.max_z", d.Effect.MaxZ)
	l.v.SetDefault("effect.workers", d.Effect.Workers)
	l.v.SetDefault("effect.shader_cache_size", d.Effect.ShaderCacheSize)
	l.v.SetDefault("effect.block_compilation", d.Effect.BlockCompilation)

	l.v.SetDefault("output.format", d.Output.Format)
	l.v.SetDefault("output.jpeg_quality", d.Output.JPEGQuality)

	l.v.SetDefault("metrics.path", d.Metrics.Path)
}

// Marshal renders cfg as YAML in the layout Load reads.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteFile writes cfg as YAML to path. It refuses to overwrite an existing
// file unless force is set.
func WriteFile(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
