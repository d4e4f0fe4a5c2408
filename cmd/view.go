package cmd

import (
	"github.com/philipparndt/printview/internal/app"
	"github.com/philipparndt/printview/internal/panel"
	"github.com/spf13/cobra"
)

func newViewCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view <file>",
		Short: "Open a model in the interactive viewer",
		Long: `Open an STL or GCode file in a window. Drag with the left button to rotate,
the right button to pan and the wheel to zoom. Press H in the window for all keys.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(o, args[0])
		},
	}
}

func runView(o *options, path string) error {
	return app.Run(o.cfg, path)
}

func newPanelCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "panel [file]",
		Short: "Open a model in the panel window with numeric controls",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return panel.Run(o.cfg, path)
		},
	}
}
