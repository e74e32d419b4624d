package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/dof"
	"github.com/gogpu/dof/internal/metrics"
	"github.com/gogpu/dof/postprocess"
)

func (a *app) renderCmd() *cobra.Command {
	var input, depth, output string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Apply depth of field to an image",
		Example: `  dofblur render -i photo.png -d depth.png -o out.png
  dofblur render -i photo.jpg -d depth.tga -o out.webp --blur-level high --focus-distance 5000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.render(input, depth, output)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "input image")
	f.StringVarP(&depth, "depth", "d", "", "depth map, brighter is farther")
	f.StringVarP(&output, "output", "o", "", "output image (.png, .jpg, .webp, .tga)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("depth")
	_ = cmd.MarkFlagRequired("output")

	f.String("blur-level", "", "blur level (low, medium, high)")
	f.Float64("focus-distance", 0, "focus distance in millimeters")
	f.Float64("focal-length", 0, "focal length in millimeters")
	f.Float64("f-stop", 0, "aperture f-number")
	f.Float64("lens-size", 0, "lens size, larger is blurrier")
	f.Int("workers", 0, "shading workers (0 = GOMAXPROCS)")
	f.String("format", "", "output format, overriding the file extension (png, jpeg, webp, tga)")
	f.String("metrics", "", "write Prometheus metrics to this file after rendering")

	a.bindFlag("effect.blur_level", f.Lookup("blur-level"))
	a.bindFlag("effect.focus_distance", f.Lookup("focus-distance"))
	a.bindFlag("effect.focal_length", f.Lookup("focal-length"))
	a.bindFlag("effect.f_stop", f.Lookup("f-stop"))
	a.bindFlag("effect.lens_size", f.Lookup("lens-size"))
	a.bindFlag("effect.workers", f.Lookup("workers"))
	a.bindFlag("output.format", f.Lookup("format"))
	a.bindFlag("metrics.path", f.Lookup("metrics"))

	return cmd
}

func (a *app) render(input, depthPath, output string) error {
	start := time.Now()
	cfg := a.cfg

	img, err := loadImage(input)
	if err != nil {
		return err
	}
	frame := postprocess.NewTextureFromImage(img)

	depth, err := loadDepth(depthPath, frame.Width(), frame.Height())
	if err != nil {
		return err
	}

	level, err := dof.ParseBlurLevel(cfg.Effect.BlurLevel)
	if err != nil {
		return err
	}

	engine := a.newEngine()
	defer engine.Close()

	fx, err := dof.NewEffect(dof.EffectConfig{
		Name:             "dofblur",
		Camera:           postprocess.NewCamera("dofblur", frame.Width(), frame.Height()),
		Depth:            depth,
		BlurLevel:        level,
		Lens:             cfg.Effect.Lens(),
		Engine:           engine,
		BlockCompilation: cfg.Effect.BlockCompilation,
	})
	if err != nil {
		return err
	}
	defer fx.Dispose()

	out, err := fx.Render(frame)
	if err != nil {
		return err
	}

	if err := saveImage(out.Image(), output, cfg.Output.Format, cfg.Output.JPEGQuality); err != nil {
		return err
	}

	stats := engine.ProgramCacheStats()
	slog.Info("rendered",
		"input", input,
		"output", output,
		"width", frame.Width(),
		"height", frame.Height(),
		"blur_level", level,
		"passes", len(fx.Passes()),
		"programs", stats.Len,
		"elapsed", time.Since(start))

	if path := cfg.Metrics.Path; path != "" {
		if err := writeMetrics(path); err != nil {
			return err
		}
	}
	return nil
}

func writeMetrics(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return metrics.WriteText(f)
}
