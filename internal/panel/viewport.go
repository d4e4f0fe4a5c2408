package panel

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/printview/internal/render/soft"
	"github.com/philipparndt/printview/internal/scene"
)

// Viewport shows a scene rendered by the software rasterizer and turns
// pointer input into scene gestures
type Viewport struct {
	widget.BaseWidget

	scene      *scene.Scene
	surface    *soft.Canvas
	raster     *canvas.Raster
	background color.RGBA

	button   desktop.MouseButton // Held button, zero when none
	panning  bool                // Shift held when the drag started
	dragging bool
}

var (
	_ fyne.Draggable    = (*Viewport)(nil)
	_ fyne.Scrollable   = (*Viewport)(nil)
	_ desktop.Mouseable = (*Viewport)(nil)
	_ desktop.Hoverable = (*Viewport)(nil)
)

// NewViewport creates a viewport for s, which must draw into surface
func NewViewport(s *scene.Scene, surface *soft.Canvas, background color.RGBA) *Viewport {
	v := &Viewport{
		scene:      s,
		surface:    surface,
		background: background,
	}
	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

// draw renders one frame at the raster's pixel size
func (v *Viewport) draw(width, height int) image.Image {
	v.surface.Resize(width, height)
	v.surface.Clear(v.background)
	v.scene.Display(width, height)
	v.scene.ClearDirty()
	return v.surface.Image()
}

// CreateRenderer creates the renderer for the widget
func (v *Viewport) CreateRenderer() fyne.WidgetRenderer {
	return &viewportRenderer{
		viewport: v,
		objects:  []fyne.CanvasObject{v.raster},
	}
}

// MouseDown starts a gesture with the pressed button
func (v *Viewport) MouseDown(event *desktop.MouseEvent) {
	v.button = event.Button
	v.panning = event.Modifier&fyne.KeyModifierShift != 0
	v.scene.ButtonPress(float64(event.Position.X), float64(event.Position.Y))
}

// MouseUp ends the gesture
func (v *Viewport) MouseUp(*desktop.MouseEvent) {
	v.button = 0
	v.panning = false
}

func (v *Viewport) MouseIn(*desktop.MouseEvent) {}

// MouseMoved drives secondary and tertiary button drags, which are not
// delivered as drag events
func (v *Viewport) MouseMoved(event *desktop.MouseEvent) {
	if v.dragging {
		return
	}
	middle := v.button == desktop.MouseButtonTertiary
	right := v.button == desktop.MouseButtonSecondary
	if middle || right {
		v.scene.ButtonMotion(float64(event.Position.X), float64(event.Position.Y), false, middle, right)
	}
}

func (v *Viewport) MouseOut() {}

// Dragged handles primary button drags: rotation, or panning with Shift
func (v *Viewport) Dragged(event *fyne.DragEvent) {
	x := float64(event.Position.X)
	y := float64(event.Position.Y)
	if !v.dragging {
		v.dragging = true
		if v.button == 0 {
			v.scene.ButtonPress(x-float64(event.Dragged.DX), y-float64(event.Dragged.DY))
		}
	}
	v.scene.ButtonMotion(x, y, !v.panning, false, v.panning)
}

// DragEnd handles the end of a drag event
func (v *Viewport) DragEnd() {
	v.dragging = false
	v.button = 0
	v.panning = false
}

// Scrolled zooms; scrolling up zooms in
func (v *Viewport) Scrolled(event *fyne.ScrollEvent) {
	if event.Scrolled.DY != 0 {
		v.scene.WheelScroll(float64(event.Scrolled.DY))
	}
}

// viewportRenderer implements fyne.WidgetRenderer
type viewportRenderer struct {
	viewport *Viewport
	objects  []fyne.CanvasObject
}

func (r *viewportRenderer) Layout(size fyne.Size) {
	r.viewport.raster.Resize(size)
}

func (r *viewportRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *viewportRenderer) Refresh() {
	canvas.Refresh(r.viewport.raster)
}

func (r *viewportRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *viewportRenderer) Destroy() {}
