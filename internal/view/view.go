// Package view implements the scene cameras: a fixed 2D top view and a
// rotatable 3D view with perspective and orthographic projection.
package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/printview/internal/render"
)

const (
	MinZoom     = 0.01
	MaxZoom     = 100.0
	MinDistance = 1.0
)

// State is the camera state of one view. Angles are in degrees.
type State struct {
	Azimuth    float64
	Elevation  float64
	X          float64
	Y          float64
	Z          float64
	ZoomFactor float64
	Ortho      bool
}

// Capabilities lists the optional gestures a view supports
type Capabilities struct {
	Rotate bool
	Offset bool
	Ortho  bool
}

// View is a camera that configures a render.Renderer for drawing.
//
// Begin and End bracket all drawing for one frame; use
// defer v.End() so the renderer state is restored on every path.
type View interface {
	Begin(width, height int)
	End()
	DisplayTransform()
	UITransform(length float64)

	Rotate(deltaAzimuth, deltaElevation float64)
	Offset(dx, dy float64)
	Pan(dx, dy float64)
	Zoom(dx, dy float64)
	ResetState()
	SetAngles(azimuth, elevation float64)

	State() State
	Capabilities() Capabilities
	Ortho() bool
	SetOrtho(ortho bool)

	ProjectionMatrix(width, height int) mgl64.Mat4
	ModelViewMatrix(width, height int) mgl64.Mat4
}

// Options configures camera defaults
type Options struct {
	Distance  float64
	Elevation float64
	Azimuth   float64
	FovY      float64
	ZoomSpeed float64
	Zoom2D    float64
}

// DefaultOptions returns the stock camera settings
func DefaultOptions() Options {
	return Options{
		Distance:  300,
		Elevation: -20,
		Azimuth:   0,
		FovY:      60,
		ZoomSpeed: 0.005,
		Zoom2D:    5,
	}
}

// camera holds what both views share
type camera struct {
	r         render.Renderer
	state     State
	defaults  State
	zoomSpeed float64

	width, height int
}

func (c *camera) State() State {
	return c.state
}

// ResetState restores the default pan, zoom and angles. The projection
// type is kept.
func (c *camera) ResetState() {
	ortho := c.state.Ortho
	c.state = c.defaults
	c.state.Ortho = ortho
}

// Zoom scales by exp(dy·speed); positive dy zooms in, dx is ignored
func (c *camera) Zoom(dx, dy float64) {
	c.state.ZoomFactor = clamp(c.state.ZoomFactor*math.Exp(dy*c.zoomSpeed), MinZoom, MaxZoom)
}

func (c *camera) begin(width, height int, projection mgl64.Mat4) {
	c.width, c.height = width, height
	c.r.PushProjection(projection)
	c.r.PushMatrix()
	c.r.LoadIdentity()
}

func (c *camera) End() {
	c.r.PopMatrix()
	c.r.PopProjection()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func aspect(width, height int) float64 {
	if height <= 0 {
		return 1
	}
	return float64(width) / float64(height)
}

func rad(deg float64) float64 {
	return mgl64.DegToRad(deg)
}
