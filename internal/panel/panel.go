// Package panel is a fyne front end with numeric controls for scale,
// rotation, dimensions and visible layers next to a rendered viewport.
package panel

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fynestorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/printview/internal/config"
	"github.com/philipparndt/printview/internal/document"
	"github.com/philipparndt/printview/internal/logger"
	"github.com/philipparndt/printview/internal/model"
	"github.com/philipparndt/printview/internal/render/soft"
	"github.com/philipparndt/printview/pkg/analysis"
	"github.com/philipparndt/printview/pkg/geometry"
	"github.com/philipparndt/printview/pkg/watcher"
	"go.uber.org/zap"
)

const (
	appID       = "io.github.philipparndt.printview"
	windowTitle = "printview"
)

var (
	modelExtensions   = []string{".stl", ".gcode", ".nc"}
	defaultBackground = color.RGBA{30, 30, 38, 255}
)

// Panel is the main window content
type Panel struct {
	cfg      *config.Config
	window   fyne.Window
	doc      *document.Document
	viewport *Viewport
	watcher  *watcher.FileWatcher
	log      *zap.Logger

	scale      *widget.Entry
	rotation   [3]*widget.Entry
	dimensions [3]*widget.Entry
	layers     *widget.Slider
	layerLabel *widget.Label
	mode2D     *widget.Check
	ortho      *widget.Check
	arrows     *widget.Check
	info       *widget.Label

	meshControls []fyne.Disableable

	// Set while widgets are updated from the model so their callbacks
	// do not feed the values back
	updating bool
}

// Run opens the panel window, optionally showing path, and blocks until
// the window is closed
func Run(cfg *config.Config, path string) error {
	a := fyneapp.NewWithID(appID)
	w := a.NewWindow(windowTitle)

	p := New(cfg, w)
	defer p.Close()
	if path != "" {
		if err := p.Open(path); err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
	}

	w.Resize(fyne.NewSize(float32(cfg.Window.Width), float32(cfg.Window.Height)))
	w.SetCloseIntercept(p.confirmClose)
	w.ShowAndRun()
	return nil
}

// New builds the panel content into w
func New(cfg *config.Config, w fyne.Window) *Panel {
	surface := soft.New(1, 1)
	doc := document.New(surface, cfg)

	p := &Panel{
		cfg:    cfg,
		window: w,
		doc:    doc,
		log:    logger.Named("panel"),
	}
	p.viewport = NewViewport(doc.Scene(), surface, config.MustColor(cfg.Colors.Background, defaultBackground))
	doc.Scene().OnInvalidate = p.viewport.Refresh

	w.SetContent(p.build())
	p.refresh()
	return p
}

// Document returns the document shown in the panel
func (p *Panel) Document() *document.Document {
	return p.doc
}

func (p *Panel) build() fyne.CanvasObject {
	p.scale = p.numberEntry(p.applyScale)
	for i := range p.rotation {
		axis := geometry.Axis(i)
		p.rotation[i] = p.numberEntry(func(v float64) error {
			return p.doc.Scene().RotateModel(v, axis.String())
		})
	}
	for i := range p.dimensions {
		d := model.Dimension(i)
		p.dimensions[i] = p.numberEntry(func(v float64) error {
			return p.doc.Scene().ChangeModelDimension(d, v)
		})
	}

	p.layers = widget.NewSlider(0, 1)
	p.layers.Step = 1
	p.layers.OnChanged = func(v float64) {
		if p.updating {
			return
		}
		p.apply(p.doc.Scene().ChangeNumLayers(int(v)))
	}
	p.layerLabel = widget.NewLabel("")

	p.mode2D = widget.NewCheck("2D view", func(on bool) {
		if !p.updating {
			p.doc.Scene().SetMode2D(on)
			p.refresh()
		}
	})
	p.ortho = widget.NewCheck("Orthographic", func(on bool) {
		if !p.updating {
			p.doc.Scene().SetModeOrtho(on)
			p.refresh()
		}
	})
	p.arrows = widget.NewCheck("Show normals", func(on bool) {
		if !p.updating {
			p.apply(p.doc.Scene().ShowArrows(on))
		}
	})

	center := widget.NewButton("Center on platform", func() {
		p.apply(p.doc.Scene().CenterModel())
	})
	resetView := widget.NewButton("Reset view", func() {
		p.doc.Scene().ResetView(false)
	})

	p.meshControls = []fyne.Disableable{
		p.scale,
		p.rotation[0], p.rotation[1], p.rotation[2],
		p.dimensions[0], p.dimensions[1], p.dimensions[2],
		p.arrows, center,
	}

	p.info = widget.NewLabel("")

	form := widget.NewForm(
		widget.NewFormItem("Scale", p.scale),
		widget.NewFormItem("Rotate X", p.rotation[0]),
		widget.NewFormItem("Rotate Y", p.rotation[1]),
		widget.NewFormItem("Rotate Z", p.rotation[2]),
		widget.NewFormItem("Width", p.dimensions[0]),
		widget.NewFormItem("Depth", p.dimensions[1]),
		widget.NewFormItem("Height", p.dimensions[2]),
	)

	sidebar := container.NewVBox(
		widget.NewLabel("Model"),
		widget.NewSeparator(),
		p.info,
		form,
		center,
		widget.NewSeparator(),
		widget.NewLabel("Layers"),
		p.layerLabel,
		p.layers,
		widget.NewSeparator(),
		widget.NewLabel("View"),
		p.mode2D,
		p.ortho,
		p.arrows,
		resetView,
		widget.NewSeparator(),
		widget.NewButton("Open...", p.showOpenDialog),
		widget.NewButton("Save", p.save),
		widget.NewButton("Save As...", p.showSaveDialog),
	)

	scroll := container.NewVScroll(sidebar)
	scroll.SetMinSize(fyne.NewSize(260, 0))

	return container.NewBorder(nil, nil, nil, scroll, p.viewport)
}

// numberEntry creates an entry that parses its text and applies it on submit
func (p *Panel) numberEntry(apply func(float64) error) *widget.Entry {
	e := widget.NewEntry()
	e.OnSubmitted = func(text string) {
		v, err := parseNumber(text)
		if err != nil {
			p.showError(err)
			p.refresh()
			return
		}
		p.apply(apply(v))
	}
	return e
}

func parseNumber(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(text, ",", ".")), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", text)
	}
	return v, nil
}

func (p *Panel) applyScale(v float64) error {
	m, ok := p.doc.Scene().Model().(*model.Mesh)
	if !ok {
		return p.doc.Scene().ScaleModel(v)
	}
	if v <= 0 {
		return fmt.Errorf("%w: scale must be positive", model.ErrGeometry)
	}
	// The entry shows the absolute factor, the scene scales relatively
	return p.doc.Scene().ScaleModel(v / m.ScalingFactor())
}

// apply reports err, then shows the current model state
func (p *Panel) apply(err error) {
	if err != nil {
		p.showError(err)
	}
	p.refresh()
}

// Open loads path into the panel and starts watching it
func (p *Panel) Open(path string) error {
	if err := p.doc.Open(path, nil); err != nil {
		return err
	}
	p.refresh()
	if p.cfg.Watch.Enabled {
		if err := p.watch(p.doc.Sources()); err != nil {
			p.log.Warn("auto reload not available", zap.Error(err))
		}
	}
	return nil
}

func (p *Panel) watch(files []string) error {
	if p.watcher == nil {
		fw, err := watcher.NewFileWatcher(p.cfg.Watch.Debounce, p.log.Named("watcher"))
		if err != nil {
			return err
		}
		fw.Start()
		p.watcher = fw
	} else if err := p.watcher.RemoveAll(); err != nil {
		return err
	}

	return p.watcher.Watch(files, func(string) {
		m, err := p.doc.Reload()
		fyne.Do(func() {
			if err != nil {
				p.showError(err)
				return
			}
			p.doc.Show(m)
			p.refresh()
		})
	})
}

// Close releases the file watcher and rendered intermediates
func (p *Panel) Close() {
	if p.watcher != nil {
		p.watcher.Close()
		p.watcher = nil
	}
	if err := p.doc.Close(); err != nil {
		p.log.Warn("cleanup failed", zap.Error(err))
	}
}

// refresh copies the model state into the widgets
func (p *Panel) refresh() {
	p.updating = true
	defer func() { p.updating = false }()

	s := p.doc.Scene()
	p.window.SetTitle(p.doc.Title(windowTitle))
	p.mode2D.SetChecked(s.Mode2D())
	p.ortho.SetChecked(s.ModeOrtho())
	if s.Mode2D() {
		p.ortho.Disable()
	} else {
		p.ortho.Enable()
	}

	mesh, isMesh := s.Model().(*model.Mesh)
	for _, c := range p.meshControls {
		if isMesh {
			c.Enable()
		} else {
			c.Disable()
		}
	}

	toolpath, isToolpath := s.Model().(*model.Toolpath)
	if isToolpath {
		p.layers.Enable()
		p.layers.Min = 0
		p.layers.Max = float64(toolpath.LayerCount())
		p.layers.SetValue(float64(toolpath.NumLayersToDraw()))
		p.layerLabel.SetText(fmt.Sprintf("%d / %d", toolpath.NumLayersToDraw(), toolpath.LayerCount()))
	} else {
		p.layers.Disable()
		p.layerLabel.SetText("-")
	}

	switch {
	case isMesh:
		p.scale.SetText(strconv.FormatFloat(mesh.ScalingFactor(), 'f', -1, 64))
		for i := range p.rotation {
			p.rotation[i].SetText(strconv.FormatFloat(mesh.Rotation(geometry.Axis(i)), 'f', -1, 64))
		}
		for i := range p.dimensions {
			p.dimensions[i].SetText(fmt.Sprintf("%.2f", mesh.Dimension(model.Dimension(i))))
		}
		p.arrows.SetChecked(mesh.ArrowsEnabled())
		result := analysis.AnalyzeMesh(mesh.Vertices())
		p.info.SetText(fmt.Sprintf("Facets: %d\nSurface area: %.2f mm2", result.FacetCount, result.SurfaceArea))
	case isToolpath:
		result := analysis.AnalyzeToolpath(toolpath.Layers())
		p.info.SetText(fmt.Sprintf("Layers: %d\nHeight: %.2f mm\nFilament path: %.1f mm",
			result.LayerCount, result.MaxZ, result.ExtrudeLength))
	default:
		p.info.SetText("No model loaded")
	}
}

func (p *Panel) save() {
	err := p.doc.Save()
	if errors.Is(err, document.ErrNotOpen) {
		return
	}
	p.apply(err)
}

func (p *Panel) showOpenDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			p.showError(err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		if err := p.Open(reader.URI().Path()); err != nil {
			p.showError(err)
		}
	}, p.window)
	d.SetFilter(fynestorage.NewExtensionFileFilter(modelExtensions))
	d.Show()
}

func (p *Panel) showSaveDialog() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			p.showError(err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		p.apply(p.doc.SaveAs(path))
	}, p.window)
	d.SetFilter(fynestorage.NewExtensionFileFilter([]string{".stl"}))
	d.SetFileName("model.stl")
	d.Show()
}

func (p *Panel) confirmClose() {
	if !p.doc.Scene().ModelModified() {
		p.window.Close()
		return
	}
	dialog.ShowConfirm("Unsaved changes", "The model has unsaved changes. Close anyway?", func(ok bool) {
		if ok {
			p.window.Close()
		}
	}, p.window)
}

func (p *Panel) showError(err error) {
	p.log.Error("operation failed", zap.Error(err))
	dialog.ShowError(err, p.window)
}
