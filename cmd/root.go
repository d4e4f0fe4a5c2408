// Package cmd implements the printview command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/philipparndt/printview/internal/config"
	"github.com/philipparndt/printview/internal/logger"
	"github.com/philipparndt/printview/version"
	"github.com/spf13/cobra"
)

// options holds the global flags and the configuration they resolve to
type options struct {
	configPath string
	logLevel   string
	logFile    string
	noWatch    bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:   "printview [file]",
		Short: "Viewer for 3D-printable models",
		Long: `printview shows STL meshes and GCode toolpaths in an interactive 3D/2D scene.
Meshes can be scaled, rotated and centered, then saved back as ASCII STL.`,
		Version:       version.GetFullVersion(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runView(o, args[0])
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "Path to config file (default: ./printview.yaml or the user config dir)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&o.logFile, "log-file", "", "Also write logs to this file")
	flags.BoolVar(&o.noWatch, "no-watch", false, "Do not reload the file when it changes")

	rootCmd.AddCommand(
		newViewCmd(o),
		newPanelCmd(o),
		newInfoCmd(o),
		newTransformCmd(o),
		newSnapshotCmd(o),
	)

	return rootCmd
}

// init loads the configuration and sets up logging
func (o *options) init() error {
	cfg, err := config.Load(config.Overrides{
		ConfigPath: o.configPath,
		LogLevel:   o.logLevel,
		LogFile:    o.logFile,
		NoWatch:    o.noWatch,
	})
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	o.cfg = cfg
	return nil
}

// Execute runs the root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
