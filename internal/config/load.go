package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Overrides carries command line values. Zero values leave the config untouched.
type Overrides struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
	Width      int
	Height     int
	NoWatch    bool
}

// Load loads configuration with priority: defaults < file < flags.
func Load(ov Overrides) (*Config, error) {
	cfg := Default()

	configPath := ov.ConfigPath
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyOverrides(cfg, ov)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./printview.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "printview")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "printview")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "printview")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "printview")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyOverrides(cfg *Config, ov Overrides) {
	if ov.LogLevel != "" {
		cfg.Logging.Level = ov.LogLevel
	}
	if ov.LogFile != "" {
		cfg.Logging.LogFile = ov.LogFile
	}
	if ov.Width > 0 {
		cfg.Window.Width = ov.Width
	}
	if ov.Height > 0 {
		cfg.Window.Height = ov.Height
	}
	if ov.NoWatch {
		cfg.Watch.Enabled = false
	}
}
