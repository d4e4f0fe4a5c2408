// Package document binds an open model file to a scene.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/philipparndt/printview/internal/config"
	"github.com/philipparndt/printview/internal/logger"
	"github.com/philipparndt/printview/internal/model"
	"github.com/philipparndt/printview/internal/render"
	"github.com/philipparndt/printview/internal/scene"
	"github.com/philipparndt/printview/internal/storage"
	"github.com/philipparndt/printview/internal/view"
	"github.com/philipparndt/printview/pkg/openscad"
	"go.uber.org/zap"
)

// ErrNotOpen is returned by Save and Reload before a file was opened
var ErrNotOpen = errors.New("no file open")

// Document is the file currently shown in a scene
type Document struct {
	cfg      *config.Config
	scene    *scene.Scene
	file     *storage.ModelFile
	source   string
	scad     *openscad.Renderer
	cacheDir string
	platform *model.Platform
	log      *zap.Logger
}

// ViewOptions converts the view section of the config into camera options
func ViewOptions(cfg *config.Config) view.Options {
	opts := view.DefaultOptions()
	if cfg.View.Distance > 0 {
		opts.Distance = cfg.View.Distance
	}
	if cfg.View.FovY > 0 {
		opts.FovY = cfg.View.FovY
	}
	if cfg.View.ZoomSpeed > 0 {
		opts.ZoomSpeed = cfg.View.ZoomSpeed
	}
	opts.Elevation = cfg.View.Elevation
	opts.Azimuth = cfg.View.Azimuth
	return opts
}

// New creates an empty document drawing through r
func New(r render.Renderer, cfg *config.Config) *Document {
	s := scene.New(r, ViewOptions(cfg))
	s.ShowAxes = cfg.Window.ShowAxes
	if cfg.View.Ortho {
		s.SetModeOrtho(true)
	}

	d := &Document{
		cfg:   cfg,
		scene: s,
		log:   logger.Named("document"),
	}
	d.scad = openscad.NewRenderer("", d.log.Named("openscad"))
	if cfg.Window.ShowGrid {
		d.platform = model.NewPlatform(float64(cfg.Window.GridSize), float64(cfg.Window.GridPitch))
		d.platform.Color = config.MustColor(cfg.Colors.Grid, d.platform.Color)
	}
	return d
}

// Scene returns the scene the document is displayed in
func (d *Document) Scene() *scene.Scene {
	return d.scene
}

// File returns the open file or nil
func (d *Document) File() *storage.ModelFile {
	return d.file
}

// Path returns the path of the open file or an empty string
func (d *Document) Path() string {
	if d.file == nil {
		return ""
	}
	return d.file.Path()
}

// Source returns the path the user opened. For OpenSCAD sources this
// differs from Path, which names the rendered STL.
func (d *Document) Source() string {
	return d.source
}

// Sources lists the files whose changes require a reload
func (d *Document) Sources() []string {
	if d.source == "" {
		return nil
	}
	if !openscad.IsSource(d.source) {
		return []string{d.source}
	}
	deps, err := d.scad.ResolveDependencies(d.source)
	if err != nil {
		d.log.Warn("resolving dependencies failed", zap.String("path", d.source), zap.Error(err))
		return []string{d.source}
	}
	return deps
}

// Open loads path and shows it centered on the platform.
// OpenSCAD sources are rendered to a temporary STL first.
func (d *Document) Open(path string, progress storage.ProgressFunc) error {
	load, err := d.prepare(path)
	if err != nil {
		return err
	}
	m, err := storage.Load(load, progress)
	if err != nil {
		return err
	}
	d.source = path
	d.file = storage.NewModelFile(load)
	d.Show(m)
	d.log.Info("file opened", zap.String("path", path))
	return nil
}

// Reload reads the open file again. The camera state is kept.
func (d *Document) Reload() (model.Model, error) {
	if d.file == nil {
		return nil, ErrNotOpen
	}
	if _, err := d.prepare(d.source); err != nil {
		return nil, err
	}
	return storage.Load(d.file.Path(), nil)
}

// prepare returns the path storage should load for path
func (d *Document) prepare(path string) (string, error) {
	if !openscad.IsSource(path) {
		return path, nil
	}
	if d.cacheDir == "" {
		dir, err := os.MkdirTemp("", "printview-")
		if err != nil {
			return "", fmt.Errorf("creating render directory: %w", err)
		}
		d.cacheDir = dir
	}
	out := openscad.OutputPath(d.cacheDir, path)
	if err := d.scad.RenderToSTL(context.Background(), path, out); err != nil {
		return "", err
	}
	return out, nil
}

// Close removes rendered intermediates
func (d *Document) Close() error {
	if d.cacheDir == "" {
		return nil
	}
	err := os.RemoveAll(d.cacheDir)
	d.cacheDir = ""
	return err
}

// Show replaces the displayed model, keeping both cameras as they are
func (d *Document) Show(m model.Model) {
	d.style(m)

	d.scene.Clear()
	d.scene.AddModel(m)
	if d.platform != nil {
		d.scene.AddSupportingActor(d.platform)
	}
	if err := d.scene.ViewModelCenter(); err != nil {
		d.log.Warn("centering failed", zap.Error(err))
	}
}

func (d *Document) style(m model.Model) {
	switch mm := m.(type) {
	case *model.Mesh:
		mm.Color = config.MustColor(d.cfg.Colors.Model, mm.Color)
	case *model.Toolpath:
		mm.Color = config.MustColor(d.cfg.Colors.Toolpath, mm.Color)
		mm.TravelColor = config.MustColor(d.cfg.Colors.Travel, mm.TravelColor)
	}
}

// Save writes the model back to the open file
func (d *Document) Save() error {
	if d.file == nil {
		return ErrNotOpen
	}
	if openscad.IsSource(d.source) {
		return fmt.Errorf("%w: %s is generated, use save as", storage.ErrModelFile, d.file.Basename())
	}
	return d.scene.ExportToFile(d.file)
}

// SaveAs writes the model to path and makes it the open file on success
func (d *Document) SaveAs(path string) error {
	f := storage.NewModelFile(path)
	if err := d.scene.ExportToFile(f); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	d.file = f
	d.source = path
	d.log.Info("file saved", zap.String("path", path))
	return nil
}

// Title is a window title for the document, marked when modified
func (d *Document) Title(app string) string {
	if d.file == nil {
		return app
	}
	mark := ""
	if d.scene.ModelModified() {
		mark = "*"
	}
	return fmt.Sprintf("%s%s - %s", d.file.Basename(), mark, app)
}
