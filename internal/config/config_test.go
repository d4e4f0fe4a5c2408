package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1024 {
		t.Errorf("expected width 1024, got %d", cfg.Window.Width)
	}
	if cfg.View.Distance != 300 {
		t.Errorf("expected distance 300, got %v", cfg.View.Distance)
	}
	if cfg.View.Elevation != -20 {
		t.Errorf("expected elevation -20, got %v", cfg.View.Elevation)
	}
	if cfg.View.PanSpeed != 25 || cfg.View.RotateSpeed != 25 {
		t.Errorf("expected pan/rotate speed 25, got %v/%v", cfg.View.PanSpeed, cfg.View.RotateSpeed)
	}
	if !cfg.Watch.Enabled {
		t.Error("expected watch to be enabled by default")
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
window:
  width: 1920
  show_grid: false

view:
  distance: 500
  zoom_speed: 0.01

watch:
  debounce: 2s

logging:
  level: "debug"
  log_file: "printview.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 768 {
		t.Errorf("expected untouched height 768, got %d", cfg.Window.Height)
	}
	if cfg.Window.ShowGrid {
		t.Error("expected show_grid to be false")
	}
	if cfg.View.Distance != 500 {
		t.Errorf("expected distance 500, got %v", cfg.View.Distance)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Logging.LogFile != "printview.log" {
		t.Errorf("expected log file 'printview.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("logging:\n  level: warn\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(Overrides{ConfigPath: configPath, LogLevel: "debug", Width: 640, NoWatch: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected flag level 'debug' to win, got %s", cfg.Logging.Level)
	}
	if cfg.Window.Width != 640 {
		t.Errorf("expected width 640, got %d", cfg.Window.Width)
	}
	if cfg.Watch.Enabled {
		t.Error("expected watch disabled by override")
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(Overrides{ConfigPath: "/nonexistent/printview.yaml"}); err == nil {
		t.Error("expected error for missing explicit config, got nil")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.View.FovY = 45
	cfg.Colors.Model = "#112233"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.View.FovY != 45 {
		t.Errorf("expected fovy 45, got %v", loaded.View.FovY)
	}
	if loaded.Colors.Model != "#112233" {
		t.Errorf("expected model color #112233, got %s", loaded.Colors.Model)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff0000", color.RGBA{255, 0, 0, 255}, false},
		{"#008aff", color.RGBA{0, 138, 255, 255}, false},
		{"#5a5a5a80", color.RGBA{90, 90, 90, 128}, false},
		{"00ff00", color.RGBA{0, 255, 0, 255}, false},
		{"#fff", color.RGBA{}, true},
		{"#zzzzzz", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
