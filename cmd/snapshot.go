package cmd

import (
	"bufio"
	"fmt"
	"image/color"
	"os"

	"github.com/philipparndt/printview/internal/config"
	"github.com/philipparndt/printview/internal/document"
	"github.com/philipparndt/printview/internal/render/soft"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(o *options) *cobra.Command {
	var (
		output    string
		width     int
		height    int
		mode2D    bool
		ortho     bool
		azimuth   float64
		elevation float64
		layers    int
	)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot <file>",
		Short: "Render a model to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canvas := soft.New(width, height)
			doc := document.New(canvas, o.cfg)
			defer doc.Close()
			if err := doc.Open(args[0], nil); err != nil {
				return err
			}
			s := doc.Scene()

			s.SetMode2D(mode2D)
			if ortho {
				s.SetModeOrtho(true)
			}
			if cmd.Flags().Changed("azimuth") || cmd.Flags().Changed("elevation") {
				st := s.CurrentView().State()
				if cmd.Flags().Changed("azimuth") {
					st.Azimuth = azimuth
				}
				if cmd.Flags().Changed("elevation") {
					st.Elevation = elevation
				}
				s.RotateView(st.Azimuth, st.Elevation)
			}
			if cmd.Flags().Changed("layers") {
				if err := s.ChangeNumLayers(layers); err != nil {
					return err
				}
			}

			w, h := canvas.Size()
			canvas.Clear(config.MustColor(o.cfg.Colors.Background, color.RGBA{30, 30, 38, 255}))
			s.Display(w, h)

			if err := writePNG(canvas, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", output, w, h)
			return nil
		},
	}

	flags := snapshotCmd.Flags()
	flags.StringVarP(&output, "output", "o", "snapshot.png", "Output PNG file")
	flags.IntVar(&width, "width", 800, "Image width in pixels")
	flags.IntVar(&height, "height", 600, "Image height in pixels")
	flags.BoolVar(&mode2D, "2d", false, "Render the 2D top view")
	flags.BoolVar(&ortho, "ortho", false, "Use an orthographic projection")
	flags.Float64Var(&azimuth, "azimuth", 0, "Camera azimuth in degrees")
	flags.Float64Var(&elevation, "elevation", -20, "Camera elevation in degrees, negative looks down")
	flags.IntVar(&layers, "layers", 0, "Number of toolpath layers to show")

	return snapshotCmd
}

func writePNG(canvas *soft.Canvas, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := canvas.WritePNG(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
