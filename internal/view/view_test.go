package view

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/printview/internal/render"
)

const eps = 1e-9

func TestCapabilities(t *testing.T) {
	r := render.NewRecorder()
	tests := []struct {
		name string
		v    View
		want Capabilities
	}{
		{"2d", NewView2D(r, DefaultOptions()), Capabilities{}},
		{"3d", NewView3D(r, DefaultOptions()), Capabilities{Rotate: true, Offset: true, Ortho: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Capabilities(); got != tt.want {
				t.Errorf("Capabilities failed: expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestView3DDefaults(t *testing.T) {
	v := NewView3D(render.NewRecorder(), DefaultOptions())
	s := v.State()
	if s.Elevation != -20 || s.Y != 300 || s.ZoomFactor != 1 || s.Ortho {
		t.Errorf("Defaults failed: got %+v", s)
	}
}

func TestZoomDirection(t *testing.T) {
	for _, v := range []View{
		NewView2D(render.NewRecorder(), DefaultOptions()),
		NewView3D(render.NewRecorder(), DefaultOptions()),
	} {
		start := v.State().ZoomFactor

		v.Zoom(0, 30)
		in := v.State().ZoomFactor
		if in <= start {
			t.Errorf("Zoom in failed: expected > %v, got %v", start, in)
		}

		v.Zoom(123, -30)
		if math.Abs(v.State().ZoomFactor-start) > eps {
			t.Errorf("Zoom out failed: expected %v, got %v", start, v.State().ZoomFactor)
		}
	}
}

func TestZoomClamp(t *testing.T) {
	v := NewView3D(render.NewRecorder(), DefaultOptions())
	for i := 0; i < 1000; i++ {
		v.Zoom(0, 30)
	}
	if v.State().ZoomFactor != MaxZoom {
		t.Errorf("Zoom clamp failed: expected %v, got %v", MaxZoom, v.State().ZoomFactor)
	}
}

func TestView3DGestures(t *testing.T) {
	v := NewView3D(render.NewRecorder(), DefaultOptions())

	v.Rotate(30, 10)
	v.Pan(5, 7)
	v.Offset(0, -50)

	s := v.State()
	if s.Azimuth != 30 || s.Elevation != -10 {
		t.Errorf("Rotate failed: expected (30, -10), got (%v, %v)", s.Azimuth, s.Elevation)
	}
	if s.X != 5 || s.Z != -7 {
		t.Errorf("Pan failed: expected X 5 and Z -7, got %v and %v", s.X, s.Z)
	}
	if s.Y != 250 {
		t.Errorf("Offset failed: expected Y 250, got %v", s.Y)
	}

	v.Offset(0, -1000)
	if v.State().Y != MinDistance {
		t.Errorf("Offset clamp failed: expected %v, got %v", MinDistance, v.State().Y)
	}

	v.Rotate(-60, 500)
	if v.State().Azimuth != 330 || v.State().Elevation != 90 {
		t.Errorf("Angle limits failed: got (%v, %v)", v.State().Azimuth, v.State().Elevation)
	}
}

func TestView2DIgnoresRotation(t *testing.T) {
	v := NewView2D(render.NewRecorder(), DefaultOptions())
	before := v.State()

	v.Rotate(45, 45)
	v.Offset(10, 10)
	v.SetAngles(10, 10)
	v.SetOrtho(true)

	if v.State() != before || v.Ortho() {
		t.Errorf("View2D failed: expected unchanged state %+v, got %+v", before, v.State())
	}

	v.Pan(3, 4)
	if v.State().X != 3 || v.State().Y != -4 {
		t.Errorf("Pan failed: expected (3, -4), got (%v, %v)", v.State().X, v.State().Y)
	}
}

func TestResetState(t *testing.T) {
	v := NewView3D(render.NewRecorder(), DefaultOptions())
	defaults := v.State()

	v.SetOrtho(true)
	v.Rotate(10, 10)
	v.Pan(1, 1)
	v.Zoom(0, 30)
	v.ResetState()

	want := defaults
	want.Ortho = true
	if v.State() != want {
		t.Errorf("ResetState failed: expected %+v, got %+v", want, v.State())
	}
}

func TestBeginEndBalanced(t *testing.T) {
	r := render.NewRecorder()
	for _, v := range []View{NewView2D(r, DefaultOptions()), NewView3D(r, DefaultOptions())} {
		func() {
			v.Begin(800, 600)
			defer v.End()
			v.DisplayTransform()
			if r.Projection.Depth() != 1 || r.ModelView.Depth() != 1 {
				t.Errorf("Begin failed: expected one pushed level, got %d and %d",
					r.Projection.Depth(), r.ModelView.Depth())
			}
			if r.ModelView.Top() != v.ModelViewMatrix(800, 600) {
				t.Error("DisplayTransform failed: expected modelview to be loaded")
			}
		}()
		if !r.Balanced() {
			t.Error("End failed: expected balanced stacks")
		}
	}
}

func TestView3DOrientation(t *testing.T) {
	v := NewView3D(render.NewRecorder(), Options{Distance: 100, FovY: 60, ZoomSpeed: 0.005})
	mv := v.ModelViewMatrix(100, 100)

	// World up ends up as screen up, world +Y points away from the camera
	up := mv.Mul4x1(mgl64.Vec4{0, 0, 1, 0})
	if math.Abs(up[1]-1) > eps {
		t.Errorf("Up axis failed: expected eye y 1, got %v", up)
	}
	away := mv.Mul4x1(mgl64.Vec4{0, 1, 0, 0})
	if math.Abs(away[2]+1) > eps {
		t.Errorf("Depth axis failed: expected eye z -1, got %v", away)
	}
	origin := mv.Mul4x1(mgl64.Vec4{0, 0, 0, 1})
	if math.Abs(origin[2]+100) > eps {
		t.Errorf("Distance failed: expected eye z -100, got %v", origin)
	}
}

func TestOrthoProjectionMatchesPerspectiveScale(t *testing.T) {
	v := NewView3D(render.NewRecorder(), DefaultOptions())
	p := mgl64.Vec3{0, 0, 50}

	_, perspY, _, ok := render.Project(v.ProjectionMatrix(400, 400), v.ModelViewMatrix(400, 400), p, 400, 400)
	if !ok {
		t.Fatal("Project failed: expected visible point")
	}

	v.SetOrtho(true)
	_, orthoY, _, ok := render.Project(v.ProjectionMatrix(400, 400), v.ModelViewMatrix(400, 400), p, 400, 400)
	if !ok {
		t.Fatal("Project failed: expected visible point in ortho")
	}

	if math.Abs(perspY-orthoY) > 25 {
		t.Errorf("Ortho scale failed: expected similar height, got %v and %v", perspY, orthoY)
	}
}
