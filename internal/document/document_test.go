package document

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/philipparndt/printview/internal/config"
	"github.com/philipparndt/printview/internal/model"
	"github.com/philipparndt/printview/internal/render"
	"github.com/philipparndt/printview/internal/storage"
	"github.com/philipparndt/printview/pkg/geometry"
	"github.com/philipparndt/printview/pkg/openscad"
)

const cubeSTL = `solid cube
facet normal 0 0 -1
outer loop
vertex 10 10 5
vertex 30 10 5
vertex 30 30 5
endloop
endfacet
facet normal 0 0 1
outer loop
vertex 10 10 15
vertex 30 30 15
vertex 10 30 15
endloop
endfacet
endsolid cube
`

const layersGCode = `G21
G90
M82
G1 Z0.2 F1200
G1 X10 Y10 E1
G1 X20 Y10 E2
G1 Z0.4
G1 X20 Y20 E3
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func newDocument(cfg *config.Config) *Document {
	return New(render.NewRecorder(), cfg)
}

func TestViewOptions(t *testing.T) {
	cfg := config.Default()
	cfg.View.Distance = 500
	cfg.View.Elevation = -45
	cfg.View.FovY = 0

	opts := ViewOptions(cfg)
	if opts.Distance != 500 {
		t.Errorf("Distance failed: expected 500, got %f", opts.Distance)
	}
	if opts.Elevation != -45 {
		t.Errorf("Elevation failed: expected -45, got %f", opts.Elevation)
	}
	if opts.FovY != 60 {
		t.Errorf("FovY failed: expected default 60, got %f", opts.FovY)
	}
}

func TestOpenSTL(t *testing.T) {
	cfg := config.Default()
	cfg.Colors.Model = "#ff0000"
	d := newDocument(cfg)

	if err := d.Open(writeFile(t, "cube.stl", cubeSTL), nil); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	s := d.Scene()
	m, ok := s.Model().(*model.Mesh)
	if !ok {
		t.Fatalf("Model failed: expected *model.Mesh, got %T", s.Model())
	}
	if m.Color != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("Color failed: expected red, got %v", m.Color)
	}
	if len(s.Actors()) != 2 {
		t.Errorf("Actors failed: expected model and platform, got %d", len(s.Actors()))
	}

	// Centered on the platform without touching the data
	o := m.Offset()
	if o.X != -20 || o.Y != -20 || o.Z != -5 {
		t.Errorf("Offset failed: expected (-20, -20, -5), got %v", o)
	}
	if s.ModelModified() {
		t.Error("Modified failed: opening must not modify the model")
	}
}

func TestOpenWithoutGrid(t *testing.T) {
	cfg := config.Default()
	cfg.Window.ShowGrid = false
	d := newDocument(cfg)

	if err := d.Open(writeFile(t, "print.gcode", layersGCode), nil); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(d.Scene().Actors()) != 1 {
		t.Errorf("Actors failed: expected only the model, got %d", len(d.Scene().Actors()))
	}
	tp, ok := d.Scene().Model().(*model.Toolpath)
	if !ok {
		t.Fatalf("Model failed: expected *model.Toolpath, got %T", d.Scene().Model())
	}
	if tp.LayerCount() != 2 {
		t.Errorf("LayerCount failed: expected 2, got %d", tp.LayerCount())
	}
}

func TestOpenErrors(t *testing.T) {
	d := newDocument(config.Default())

	err := d.Open(writeFile(t, "model.obj", "o cube"), nil)
	if !errors.Is(err, storage.ErrUnsupportedExtension) {
		t.Errorf("Extension failed: expected ErrUnsupportedExtension, got %v", err)
	}

	err = d.Open(writeFile(t, "broken.stl", "solid x\nfacet normal 0 0 nope\nendsolid\n"), nil)
	if !errors.Is(err, storage.ErrModelFile) {
		t.Errorf("Parse failed: expected ErrModelFile, got %v", err)
	}
	if d.File() != nil {
		t.Error("File failed: a failed open must not replace the file")
	}
}

func TestReloadKeepsCamera(t *testing.T) {
	d := newDocument(config.Default())
	path := writeFile(t, "cube.stl", cubeSTL)
	if err := d.Open(path, nil); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	s := d.Scene()
	s.RotateView(45, -60)
	before := s.CurrentView().State()

	m, err := d.Reload()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	d.Show(m)

	if s.Model() != m {
		t.Error("Show failed: expected the reloaded model")
	}
	if after := s.CurrentView().State(); after != before {
		t.Errorf("Camera failed: expected %+v, got %+v", before, after)
	}
	if len(s.Actors()) != 2 {
		t.Errorf("Actors failed: expected 2, got %d", len(s.Actors()))
	}
}

func TestNotOpen(t *testing.T) {
	d := newDocument(config.Default())
	if _, err := d.Reload(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Reload failed: expected ErrNotOpen, got %v", err)
	}
	if err := d.Save(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Save failed: expected ErrNotOpen, got %v", err)
	}
	if d.Title("printview") != "printview" {
		t.Errorf("Title failed: got %s", d.Title("printview"))
	}
}

func TestSaveAs(t *testing.T) {
	d := newDocument(config.Default())
	if err := d.Open(writeFile(t, "cube.stl", cubeSTL), nil); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := d.Scene().ScaleModel(2); err != nil {
		t.Fatalf("ScaleModel failed: %v", err)
	}
	if !strings.HasPrefix(d.Title("printview"), "cube.stl*") {
		t.Errorf("Title failed: expected modified mark, got %s", d.Title("printview"))
	}

	out := filepath.Join(t.TempDir(), "scaled.stl")
	if err := d.SaveAs(out); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if d.Path() != out {
		t.Errorf("Path failed: expected %s, got %s", out, d.Path())
	}
	if d.Scene().ModelModified() {
		t.Error("Modified failed: expected clean model after save")
	}

	saved, err := storage.Load(out, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if w := saved.(*model.Mesh).Width(); w != 40 {
		t.Errorf("Width failed: expected 40, got %f", w)
	}

	bad := filepath.Join(t.TempDir(), "scaled.gcode")
	if err := d.SaveAs(bad); !errors.Is(err, storage.ErrModelFile) {
		t.Errorf("SaveAs failed: expected ErrModelFile, got %v", err)
	}
	if d.Path() != out {
		t.Error("Path failed: a failed save must keep the open file")
	}
}

func TestSources(t *testing.T) {
	d := newDocument(config.Default())
	if d.Sources() != nil {
		t.Errorf("Sources failed: expected nil before open, got %v", d.Sources())
	}

	path := writeFile(t, "cube.stl", cubeSTL)
	if err := d.Open(path, nil); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := d.Sources(); len(got) != 1 || got[0] != path {
		t.Errorf("Sources failed: expected [%s], got %v", path, got)
	}
	if d.Source() != d.Path() {
		t.Errorf("Source failed: expected %s, got %s", d.Path(), d.Source())
	}
}

func TestOpenSCADNotInstalled(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	d := newDocument(config.Default())

	err := d.Open(writeFile(t, "part.scad", "cube(10);"), nil)
	if !errors.Is(err, openscad.ErrNotInstalled) {
		t.Errorf("Open failed: expected ErrNotInstalled, got %v", err)
	}
	if d.File() != nil {
		t.Error("File failed: a failed render must not open a file")
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestOpenSCAD(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake openscad is a shell script")
	}

	cube := writeFile(t, "cube.stl", cubeSTL)
	bin := t.TempDir()
	script := "#!/bin/sh\ncp \"" + cube + "\" \"$2\"\n"
	if err := os.WriteFile(filepath.Join(bin, "openscad"), []byte(script), 0755); err != nil {
		t.Fatalf("failed to write fake openscad: %v", err)
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.scad")
	if err := os.WriteFile(lib, []byte("module part() { cube(20); }\n"), 0644); err != nil {
		t.Fatalf("failed to write lib: %v", err)
	}
	source := filepath.Join(dir, "part.scad")
	if err := os.WriteFile(source, []byte("use <lib.scad>\npart();\n"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	d := newDocument(config.Default())
	if err := d.Open(source, nil); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if d.Source() != source {
		t.Errorf("Source failed: expected %s, got %s", source, d.Source())
	}
	if filepath.Base(d.Path()) != "part.stl" {
		t.Errorf("Path failed: expected part.stl, got %s", d.Path())
	}
	if _, ok := d.Scene().Model().(*model.Mesh); !ok {
		t.Fatalf("Model failed: expected *model.Mesh, got %T", d.Scene().Model())
	}

	sources := d.Sources()
	if len(sources) != 2 || sources[0] != source || sources[1] != lib {
		t.Errorf("Sources failed: expected [%s %s], got %v", source, lib, sources)
	}

	if _, err := d.Reload(); err != nil {
		t.Errorf("Reload failed: %v", err)
	}
	if err := d.Save(); !errors.Is(err, storage.ErrModelFile) {
		t.Errorf("Save failed: expected ErrModelFile for a rendered file, got %v", err)
	}

	rendered := d.Path()
	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(rendered); !os.IsNotExist(err) {
		t.Errorf("Close failed: expected %s to be removed, got %v", rendered, err)
	}
}

func TestSaveUnmodifiedKeepsCoordinates(t *testing.T) {
	d := newDocument(config.Default())
	path := writeFile(t, "cube.stl", cubeSTL)
	if err := d.Open(path, nil); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if d.Scene().ModelModified() {
		t.Fatal("Open failed: expected an unmodified model")
	}
	if err := d.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	saved, err := storage.Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := saved.(*model.Mesh).Vertices()
	expected := []geometry.Vector3{
		geometry.NewVector3(10, 10, 5),
		geometry.NewVector3(30, 10, 5),
		geometry.NewVector3(30, 30, 5),
	}
	for i, want := range expected {
		if !got[i].ApproxEqual(want, 1e-6) {
			t.Errorf("Vertex %d failed: expected %v, got %v", i, want, got[i])
		}
	}
}
