package cmd

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/philipparndt/printview/internal/model"
	"github.com/philipparndt/printview/internal/scene"
	"github.com/philipparndt/printview/internal/storage"
)

const cubeSTL = `solid cube
facet normal 0 0 -1
outer loop
vertex 0 0 0
vertex 20 0 0
vertex 20 10 0
endloop
endfacet
facet normal 0 0 1
outer loop
vertex 0 0 5
vertex 20 10 5
vertex 0 10 5
endloop
endfacet
endsolid cube
`

const layersGCode = `G21
G90
G1 Z0.2
G1 X10 Y0 E1
G1 Z0.4
G1 X10 Y10 E2
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// run executes the command line in isolation from any user config
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	for _, sub := range []string{"view", "panel", "info", "transform", "snapshot"} {
		if !strings.Contains(out, sub) {
			t.Errorf("Help failed: expected %s command in output", sub)
		}
	}
}

func TestInfoMesh(t *testing.T) {
	out, err := run(t, "info", writeFile(t, "cube.stl", cubeSTL), "--edges", "2")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}

	expected := []string{
		"File: cube.stl",
		"Type: stl",
		"Facets: 2",
		"Width (X): 20.000 mm",
		"Height (Z): 5.000 mm",
		"Longest Edges:",
	}
	for _, e := range expected {
		if !strings.Contains(out, e) {
			t.Errorf("info failed: expected %q in output\n%s", e, out)
		}
	}
}

func TestInfoToolpath(t *testing.T) {
	out, err := run(t, "info", writeFile(t, "print.gcode", layersGCode))
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	for _, e := range []string{"Type: gcode", "Layers: 2", "Extrusion path: 20.000 mm"} {
		if !strings.Contains(out, e) {
			t.Errorf("info failed: expected %q in output\n%s", e, out)
		}
	}
}

func TestInfoUnsupported(t *testing.T) {
	_, err := run(t, "info", writeFile(t, "model.obj", "o x"))
	if !errors.Is(err, storage.ErrUnsupportedExtension) {
		t.Errorf("info failed: expected ErrUnsupportedExtension, got %v", err)
	}
}

func loadMesh(t *testing.T, path string) *model.Mesh {
	t.Helper()
	m, err := storage.Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return m.(*model.Mesh)
}

func TestTransform(t *testing.T) {
	in := writeFile(t, "cube.stl", cubeSTL)
	dir := t.TempDir()

	tests := []struct {
		name   string
		args   []string
		width  float64
		height float64
		minX   float64
	}{
		{"scale", []string{"--scale", "2"}, 40, 10, 0},
		{"width", []string{"--width", "10"}, 10, 2.5, 0},
		{"rotate", []string{"--rotate-z", "90"}, 10, 5, -10},
		{"center", []string{"--center"}, 20, 5, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.name+".stl")
			args := append([]string{"transform", in, "-o", out}, tt.args...)
			stdout, err := run(t, args...)
			if err != nil {
				t.Fatalf("transform failed: %v", err)
			}
			if !strings.Contains(stdout, "Wrote "+out) {
				t.Errorf("transform failed: unexpected output %q", stdout)
			}

			m := loadMesh(t, out)
			if w := m.Width(); w < tt.width-1e-4 || w > tt.width+1e-4 {
				t.Errorf("Width failed: expected %f, got %f", tt.width, w)
			}
			if h := m.Height(); h < tt.height-1e-4 || h > tt.height+1e-4 {
				t.Errorf("Height failed: expected %f, got %f", tt.height, h)
			}
			box := m.BoundingBox()
			if box.Min.Z < -1e-4 || box.Min.Z > 1e-4 {
				t.Errorf("Placement failed: expected lowest point at z=0, got %f", box.Min.Z)
			}
			if box.Min.X < tt.minX-1e-4 || box.Min.X > tt.minX+1e-4 {
				t.Errorf("Placement failed: expected min x %f, got %f", tt.minX, box.Min.X)
			}
		})
	}
}

func TestTransformToolpath(t *testing.T) {
	_, err := run(t, "transform", writeFile(t, "print.gcode", layersGCode), "--scale", "2",
		"-o", filepath.Join(t.TempDir(), "out.stl"))
	if !errors.Is(err, scene.ErrUnsupported) {
		t.Errorf("transform failed: expected ErrUnsupported, got %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"perspective", nil},
		{"ortho", []string{"--ortho", "--azimuth", "45", "--elevation", "-60"}},
		{"2d", []string{"--2d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "shot.png")
			args := append([]string{"snapshot", writeFile(t, "cube.stl", cubeSTL), "-o", out, "--width", "64", "--height", "48"}, tt.args...)
			if _, err := run(t, args...); err != nil {
				t.Fatalf("snapshot failed: %v", err)
			}

			f, err := os.Open(out)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer f.Close()
			img, err := png.Decode(f)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
				t.Errorf("Size failed: expected 64x48, got %v", b)
			}
		})
	}
}

func TestSnapshotLayers(t *testing.T) {
	out := filepath.Join(t.TempDir(), "layers.png")
	if _, err := run(t, "snapshot", writeFile(t, "print.gcode", layersGCode), "-o", out, "--layers", "1",
		"--width", "32", "--height", "32"); err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("snapshot failed: expected %s to exist", out)
	}
}
