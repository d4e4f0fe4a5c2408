// Package render defines the drawing backend used by views, actors and the scene.
//
// The contract is a fixed-function style matrix stack plus a handful of batch
// primitives. Backends: Recorder (headless, used in tests), soft (image
// rasterizer for snapshots and the panel), rlgl (raylib immediate mode).
package render

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// State toggles global pipeline features
type State struct {
	DepthTest bool
	CullFace  bool
	Blend     bool
}

// DefaultState enables depth testing, back-face culling and alpha blending
func DefaultState() State {
	return State{DepthTest: true, CullFace: true, Blend: true}
}

// Renderer is a drawing backend.
//
// Projection and modelview are independent stacks. Vertex buffers are flat
// xyz float32 triples; normals, when given, have one xyz triple per vertex.
type Renderer interface {
	PushProjection(p mgl64.Mat4)
	PopProjection()
	PushMatrix()
	PopMatrix()
	LoadIdentity()
	MultMatrix(m mgl64.Mat4)
	SetState(s State)
	DrawLines(vertices []float32, c color.RGBA)
	DrawTriangles(vertices, normals []float32, c color.RGBA)
	DrawLabel(at mgl64.Vec3, text string, c color.RGBA)
}

var lightDir = mgl64.Vec3{0.3, -0.5, 0.8}.Normalize()

// Shade applies a fixed directional light to c. A zero normal yields the
// ambient term only.
func Shade(c color.RGBA, nx, ny, nz float32) color.RGBA {
	n := mgl64.Vec3{float64(nx), float64(ny), float64(nz)}
	intensity := 0.35
	if n.Len() > 0 {
		intensity += 0.65 * math.Abs(n.Normalize().Dot(lightDir))
	}
	return color.RGBA{
		R: uint8(math.Min(255, float64(c.R)*intensity)),
		G: uint8(math.Min(255, float64(c.G)*intensity)),
		B: uint8(math.Min(255, float64(c.B)*intensity)),
		A: c.A,
	}
}

// Project maps an object space point through projection and modelview into
// window coordinates with the origin at the top left. Depth is NDC z in
// [-1, 1]. ok is false for points behind the camera.
func Project(proj, mv mgl64.Mat4, p mgl64.Vec3, width, height float64) (x, y, depth float64, ok bool) {
	clip := proj.Mul4(mv).Mul4x1(p.Vec4(1))
	if clip[3] <= 1e-9 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	x = (ndc[0] + 1) / 2 * width
	y = (1 - ndc[1]) / 2 * height
	return x, y, ndc[2], true
}

// Float32Matrix converts to the column-major float32 layout GL expects
func Float32Matrix(m mgl64.Mat4) []float32 {
	out := make([]float32, 16)
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
