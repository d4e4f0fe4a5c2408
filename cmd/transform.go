package cmd

import (
	"fmt"

	"github.com/philipparndt/printview/internal/document"
	"github.com/philipparndt/printview/internal/model"
	"github.com/philipparndt/printview/internal/render"
	"github.com/philipparndt/printview/pkg/geometry"
	"github.com/spf13/cobra"
)

var (
	rotateFlags    = [3]string{"rotate-x", "rotate-y", "rotate-z"}
	dimensionFlags = [3]string{"width", "depth", "height"}
)

func newTransformCmd(o *options) *cobra.Command {
	var (
		output     string
		scale      float64
		rotation   [3]float64
		dimensions [3]float64
		center     bool
	)

	transformCmd := &cobra.Command{
		Use:   "transform <file.stl>",
		Short: "Scale, rotate and center a mesh without opening a window",
		Long: `Apply the same manipulations as the viewer and save the result as ASCII STL.
Operations run in this order: scale, rotations, dimensions, centering.
The on-screen centering of the viewer is not saved; use --center to move the
mesh data onto the platform center.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := document.New(render.NewRecorder(), o.cfg)
			defer doc.Close()
			if err := doc.Open(args[0], nil); err != nil {
				return err
			}
			s := doc.Scene()

			if scale != 1 {
				if err := s.ScaleModel(scale); err != nil {
					return err
				}
			}
			for i, name := range rotateFlags {
				if cmd.Flags().Changed(name) {
					if err := s.RotateModel(rotation[i], geometry.Axis(i).String()); err != nil {
						return err
					}
				}
			}
			for i, name := range dimensionFlags {
				if cmd.Flags().Changed(name) {
					if err := s.ChangeModelDimension(model.Dimension(i), dimensions[i]); err != nil {
						return err
					}
				}
			}
			if center {
				if err := s.CenterModel(); err != nil {
					return err
				}
			}

			if output == "" {
				output = args[0]
			}
			if err := doc.SaveAs(output); err != nil {
				return err
			}

			if m, ok := s.Model().(*model.Mesh); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%.3f x %.3f x %.3f mm)\n",
					output, m.Width(), m.Depth(), m.Height())
			}
			return nil
		},
	}

	flags := transformCmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "Output STL file (default: overwrite the input)")
	flags.Float64Var(&scale, "scale", 1, "Scale factor")
	for i, name := range rotateFlags {
		flags.Float64Var(&rotation[i], name, 0, fmt.Sprintf("Absolute rotation around %s in degrees", geometry.Axis(i)))
	}
	for i, name := range dimensionFlags {
		flags.Float64Var(&dimensions[i], name, 0, fmt.Sprintf("Scale uniformly to this %s in mm", model.Dimension(i)))
	}
	flags.BoolVar(&center, "center", false, "Center on the platform with the lowest point at z=0")

	return transformCmd
}
