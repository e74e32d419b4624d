package main

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/spf13/cobra"

	"github.com/gogpu/dof"
	"github.com/gogpu/dof/postprocess"
)

func (a *app) shaderCmd() *cobra.Command {
	var (
		kernel    float64
		direction string
	)

	cmd := &cobra.Command{
		Use:   "shader",
		Short: "Print the WGSL program of a depth-aware blur stage",
		Long: `Builds a depth-aware blur stage, compiles its program to SPIR-V and prints
the WGSL source. Useful to check a kernel size or to feed the program to a
GPU backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := parseDirection(direction)
			if err != nil {
				return err
			}

			engine := a.newEngine()
			defer engine.Close()

			coc := postprocess.NewTexture(1, 1, gputypes.TextureFormatR8Unorm, postprocess.TextureTypeUnsignedByte)
			stage, err := dof.NewDepthOfFieldBlurPostProcess(dof.BlurConfig{
				Name:              direction + " blur",
				Direction:         dir,
				Kernel:            kernel,
				CircleOfConfusion: coc,
				Engine:            engine,
			})
			if err != nil {
				return err
			}
			defer stage.Dispose()

			prog := stage.Effect().Program()
			if _, err := fmt.Fprint(cmd.OutOrStdout(), prog.Source); err != nil {
				return err
			}
			cmd.PrintErrf("// kernel %v -> %d taps (%d fetches), %d bytes SPIR-V\n",
				kernel, stage.EffectiveKernel(), len(stage.Taps()), len(prog.SPIRV))
			return nil
		},
	}

	cmd.Flags().Float64Var(&kernel, "kernel", 15, "kernel size")
	cmd.Flags().StringVar(&direction, "direction", "horizontal", "blur axis (horizontal, vertical)")
	return cmd
}

func parseDirection(s string) (postprocess.Vec2, error) {
	switch strings.ToLower(s) {
	case "horizontal", "x":
		return postprocess.V2(1, 0), nil
	case "vertical", "y":
		return postprocess.V2(0, 1), nil
	default:
		return postprocess.Vec2{}, fmt.Errorf("unknown direction %q (want horizontal or vertical)", s)
	}
}
