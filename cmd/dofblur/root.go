package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gogpu/dof"
	"github.com/gogpu/dof/internal/config"
	"github.com/gogpu/dof/postprocess"
)

// app holds state shared by the commands of one invocation.
type app struct {
	loader  *config.Loader
	cfg     *config.Config
	cfgFile string
	logOut  io.Writer

	// engineOptions are passed to every engine the commands create.
	engineOptions []postprocess.EngineOption
}

func newApp() *app {
	return &app{
		loader: config.NewLoader(),
		logOut: os.Stderr,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dofblur",
		Short: "Depth of field post-processing for images",
		Long: `dofblur blurs an image by distance from a focus plane, using a depth map.

Pixels near the focus distance stay sharp; the rest is blurred with
depth-aware separable blurs that keep blurry background from bleeding over
sharp foreground edges.

Configuration is read from dofblur.yaml (current directory or
$XDG_CONFIG_HOME/dofblur), DOFBLUR_* environment variables and flags.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./dofblur.yaml or $XDG_CONFIG_HOME/dofblur/dofblur.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json)")

	a.bindFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	a.bindFlag("log_format", root.PersistentFlags().Lookup("log-format"))

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.init()
	}

	root.AddCommand(a.renderCmd(), a.configCmd(), a.shaderCmd())
	return root
}

// init loads the configuration and installs the logger.
func (a *app) init() error {
	cfg, err := a.loader.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(a.logOut, opts)
	} else {
		handler = slog.NewTextHandler(a.logOut, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	dof.SetLogger(logger)

	if used := a.loader.ConfigFileUsed(); used != "" {
		logger.Debug("configuration loaded", "file", used)
	}
	return nil
}

// bindFlag binds a flag to a config key. A missing flag is a programming
// error.
func (a *app) bindFlag(key string, flag *pflag.Flag) {
	if err := a.loader.BindFlag(key, flag); err != nil {
		panic(err)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newEngine creates an engine sized by the effect settings.
func (a *app) newEngine() *postprocess.Engine {
	opts := []postprocess.EngineOption{
		postprocess.WithWorkers(a.cfg.Effect.Workers),
		postprocess.WithProgramCacheSize(a.cfg.Effect.ShaderCacheSize),
	}
	return postprocess.NewEngine(append(opts, a.engineOptions...)...)
}
