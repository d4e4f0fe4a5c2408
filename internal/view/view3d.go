package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/printview/internal/render"
)

// View3D orbits the origin. World Z is up; with zero angles the camera looks
// along +Y. Negative elevation looks down onto the plate.
type View3D struct {
	camera
	fovY float64
}

var _ View = (*View3D)(nil)

// NewView3D creates a 3D view drawing through r
func NewView3D(r render.Renderer, opts Options) *View3D {
	defaults := State{
		Azimuth:    opts.Azimuth,
		Elevation:  opts.Elevation,
		Y:          opts.Distance,
		ZoomFactor: 1,
	}
	return &View3D{
		camera: camera{r: r, state: defaults, defaults: defaults, zoomSpeed: opts.ZoomSpeed},
		fovY:   opts.FovY,
	}
}

func (v *View3D) clipRange() (near, far float64) {
	far = v.state.Y*100 + 10000
	if v.state.Ortho {
		return -far, far
	}
	return math.Max(0.1, v.state.Y/100), far
}

// ProjectionMatrix returns a perspective projection, or an orthographic one
// matching the perspective size at the camera distance
func (v *View3D) ProjectionMatrix(width, height int) mgl64.Mat4 {
	a := aspect(width, height)
	near, far := v.clipRange()
	if v.state.Ortho {
		halfH := v.state.Y * math.Tan(rad(v.fovY)/2)
		halfW := halfH * a
		return mgl64.Ortho(-halfW, halfW, -halfH, halfH, near, far)
	}
	return mgl64.Perspective(rad(v.fovY), a, near, far)
}

// ModelViewMatrix is T(X, Z, -Y)·S(zoom)·Rx(elevation)·Rx(-90°)·Rz(azimuth)
func (v *View3D) ModelViewMatrix(width, height int) mgl64.Mat4 {
	s := v.state
	return mgl64.Translate3D(s.X, s.Z, -s.Y).
		Mul4(mgl64.Scale3D(s.ZoomFactor, s.ZoomFactor, s.ZoomFactor)).
		Mul4(orientation(s.Azimuth, s.Elevation))
}

func orientation(azimuth, elevation float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DX(rad(elevation)).
		Mul4(mgl64.HomogRotate3DX(rad(-90))).
		Mul4(mgl64.HomogRotate3DZ(rad(azimuth)))
}

func (v *View3D) Begin(width, height int) {
	v.begin(width, height, v.ProjectionMatrix(width, height))
}

func (v *View3D) DisplayTransform() {
	v.r.MultMatrix(v.ModelViewMatrix(v.width, v.height))
}

// UITransform places overlays in the lower left corner, rotated like the camera
// but not zoomed
func (v *View3D) UITransform(length float64) {
	v.r.MultMatrix(mgl64.Translate3D(length+20, length+20, 0).
		Mul4(orientation(v.state.Azimuth, v.state.Elevation)))
}

// Rotate changes the angles; elevation is clamped to [-90, 90]
func (v *View3D) Rotate(deltaAzimuth, deltaElevation float64) {
	v.SetAngles(v.state.Azimuth+deltaAzimuth, v.state.Elevation+deltaElevation)
}

// SetAngles sets absolute angles; azimuth wraps into [0, 360)
func (v *View3D) SetAngles(azimuth, elevation float64) {
	azimuth = math.Mod(azimuth, 360)
	if azimuth < 0 {
		azimuth += 360
	}
	v.state.Azimuth = azimuth
	v.state.Elevation = clamp(elevation, -90, 90)
}

// Offset moves the camera towards or away from the origin
func (v *View3D) Offset(dx, dy float64) {
	v.state.Y = math.Max(MinDistance, v.state.Y+dy)
}

// Pan shifts the view in screen space; window y points down
func (v *View3D) Pan(dx, dy float64) {
	v.state.X += dx
	v.state.Z -= dy
}

func (v *View3D) Capabilities() Capabilities {
	return Capabilities{Rotate: true, Offset: true, Ortho: true}
}

func (v *View3D) Ortho() bool {
	return v.state.Ortho
}

func (v *View3D) SetOrtho(ortho bool) {
	v.state.Ortho = ortho
}
