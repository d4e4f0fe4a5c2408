// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	View    ViewConfig    `yaml:"view"`
	Colors  ColorsConfig  `yaml:"colors"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds window settings for the interactive front ends.
type WindowConfig struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	FPSLimit  int  `yaml:"fps_limit"`
	MSAA      bool `yaml:"msaa"`
	ShowAxes  bool `yaml:"show_axes"`
	ShowGrid  bool `yaml:"show_grid"`
	GridSize  int  `yaml:"grid_size"`
	GridPitch int  `yaml:"grid_pitch"`
}

// ViewConfig holds camera defaults and interaction speeds.
type ViewConfig struct {
	Distance    float64 `yaml:"distance"`
	Elevation   float64 `yaml:"elevation"`
	Azimuth     float64 `yaml:"azimuth"`
	FovY        float64 `yaml:"fovy"`
	ZoomSpeed   float64 `yaml:"zoom_speed"`
	PanSpeed    float64 `yaml:"pan_speed"`
	RotateSpeed float64 `yaml:"rotate_speed"`
	Ortho       bool    `yaml:"ortho"`
}

// ColorsConfig holds RGBA hex colors ("#rrggbb" or "#rrggbbaa").
type ColorsConfig struct {
	Background string `yaml:"background"`
	Model      string `yaml:"model"`
	Toolpath   string `yaml:"toolpath"`
	Travel     string `yaml:"travel"`
	Grid       string `yaml:"grid"`
}

// WatchConfig controls automatic reload of the open file.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:     1024,
			Height:    768,
			FPSLimit:  60,
			MSAA:      true,
			ShowAxes:  true,
			ShowGrid:  true,
			GridSize:  200,
			GridPitch: 10,
		},
		View: ViewConfig{
			Distance:    300,
			Elevation:   -20,
			Azimuth:     0,
			FovY:        60,
			ZoomSpeed:   0.005,
			PanSpeed:    25,
			RotateSpeed: 25,
		},
		Colors: ColorsConfig{
			Background: "#1e1e26",
			Model:      "#3399ff",
			Toolpath:   "#ff8c1a",
			Travel:     "#5a5a5a80",
			Grid:       "#474752",
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
