package view

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/printview/internal/render"
)

// View2D looks straight down in a pixel aligned orthographic frame.
// It has no rotation, no offset and no ortho toggle.
type View2D struct {
	camera
}

var _ View = (*View2D)(nil)

// NewView2D creates a 2D view drawing through r
func NewView2D(r render.Renderer, opts Options) *View2D {
	defaults := State{Elevation: 90, ZoomFactor: opts.Zoom2D}
	return &View2D{camera{r: r, state: defaults, defaults: defaults, zoomSpeed: opts.ZoomSpeed}}
}

// ProjectionMatrix is a window sized frame with y up
func (v *View2D) ProjectionMatrix(width, height int) mgl64.Mat4 {
	return mgl64.Ortho(0, float64(width), 0, float64(height), -5000, 5000)
}

// ModelViewMatrix centers the origin in the window, then pans and zooms
func (v *View2D) ModelViewMatrix(width, height int) mgl64.Mat4 {
	z := v.state.ZoomFactor
	return mgl64.Translate3D(float64(width)/2+v.state.X, float64(height)/2+v.state.Y, 0).
		Mul4(mgl64.Scale3D(z, z, z))
}

func (v *View2D) Begin(width, height int) {
	v.begin(width, height, v.ProjectionMatrix(width, height))
}

func (v *View2D) DisplayTransform() {
	v.r.MultMatrix(v.ModelViewMatrix(v.width, v.height))
}

// UITransform places overlays in the lower left corner
func (v *View2D) UITransform(length float64) {
	v.r.MultMatrix(mgl64.Translate3D(length+20, length+20, 0))
}

func (v *View2D) Rotate(deltaAzimuth, deltaElevation float64) {}

func (v *View2D) Offset(dx, dy float64) {}

// Pan moves the drawing with the cursor; window y points down
func (v *View2D) Pan(dx, dy float64) {
	v.state.X += dx
	v.state.Y -= dy
}

func (v *View2D) SetAngles(azimuth, elevation float64) {}

func (v *View2D) Capabilities() Capabilities {
	return Capabilities{}
}

func (v *View2D) Ortho() bool { return false }

func (v *View2D) SetOrtho(ortho bool) {}
