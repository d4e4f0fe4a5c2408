// Package rlgl implements render.Renderer on top of raylib's immediate mode
// GL layer. Lighting is baked into vertex colors.
package rlgl

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/printview/internal/render"
)

// batchTriangles bounds how many facets go into one Begin/End pair
const batchTriangles = 4096

type queuedLabel struct {
	x, y int32
	text string
	c    color.RGBA
}

// Renderer draws through rlgl. Labels are projected on the CPU and drawn in
// screen space by FlushLabels once the 3D pass is done.
type Renderer struct {
	width, height int
	fontSize      int32

	// Mirrors of the GL stacks, needed to project labels
	proj *render.MatrixStack
	mv   *render.MatrixStack

	labels []queuedLabel
}

var _ render.Renderer = (*Renderer)(nil)

// toMatrix converts to raylib's matrix, whose Mn fields follow GL's
// column-major element order
func toMatrix(m mgl64.Mat4) rl.Matrix {
	f := render.Float32Matrix(m)
	return rl.Matrix{
		M0: f[0], M1: f[1], M2: f[2], M3: f[3],
		M4: f[4], M5: f[5], M6: f[6], M7: f[7],
		M8: f[8], M9: f[9], M10: f[10], M11: f[11],
		M12: f[12], M13: f[13], M14: f[14], M15: f[15],
	}
}

// New creates a renderer. Call SetViewport whenever the window size changes.
func New() *Renderer {
	return &Renderer{
		fontSize: 14,
		proj:     render.NewMatrixStack(),
		mv:       render.NewMatrixStack(),
	}
}

// SetViewport records the framebuffer size used for label projection
func (r *Renderer) SetViewport(width, height int) {
	r.width, r.height = width, height
}

func (r *Renderer) PushProjection(p mgl64.Mat4) {
	rl.DrawRenderBatchActive()
	r.proj.Push()
	r.proj.Load(p)
	rl.MatrixMode(rl.Projection)
	rl.PushMatrix()
	rl.LoadIdentity()
	rl.MultMatrix(toMatrix(p))
	rl.MatrixMode(rl.Modelview)
}

func (r *Renderer) PopProjection() {
	rl.DrawRenderBatchActive()
	if !r.proj.Pop() {
		return
	}
	rl.MatrixMode(rl.Projection)
	rl.PopMatrix()
	rl.MatrixMode(rl.Modelview)
}

func (r *Renderer) PushMatrix() {
	r.mv.Push()
	rl.PushMatrix()
}

func (r *Renderer) PopMatrix() {
	if !r.mv.Pop() {
		return
	}
	rl.PopMatrix()
}

func (r *Renderer) LoadIdentity() {
	r.mv.Load(mgl64.Ident4())
	rl.LoadIdentity()
}

func (r *Renderer) MultMatrix(m mgl64.Mat4) {
	r.mv.Mult(m)
	rl.MultMatrix(toMatrix(m))
}

// SetState flushes pending geometry and switches depth test and culling.
// raylib keeps alpha blending enabled by default.
func (r *Renderer) SetState(s render.State) {
	rl.DrawRenderBatchActive()
	if s.DepthTest {
		rl.EnableDepthTest()
	} else {
		rl.DisableDepthTest()
	}
	if s.CullFace {
		rl.EnableBackfaceCulling()
	} else {
		rl.DisableBackfaceCulling()
	}
}

func (r *Renderer) DrawLines(vertices []float32, c color.RGBA) {
	rl.Begin(rl.Lines)
	rl.Color4ub(c.R, c.G, c.B, c.A)
	for i := 0; i+5 < len(vertices); i += 6 {
		rl.Vertex3f(vertices[i], vertices[i+1], vertices[i+2])
		rl.Vertex3f(vertices[i+3], vertices[i+4], vertices[i+5])
	}
	rl.End()
}

func (r *Renderer) DrawTriangles(vertices, normals []float32, c color.RGBA) {
	count := 0
	rl.Begin(rl.Triangles)
	for i := 0; i+8 < len(vertices); i += 9 {
		shaded := c
		if i+2 < len(normals) {
			shaded = render.Shade(c, normals[i], normals[i+1], normals[i+2])
		}
		rl.Color4ub(shaded.R, shaded.G, shaded.B, shaded.A)
		rl.Vertex3f(vertices[i], vertices[i+1], vertices[i+2])
		rl.Vertex3f(vertices[i+3], vertices[i+4], vertices[i+5])
		rl.Vertex3f(vertices[i+6], vertices[i+7], vertices[i+8])

		count++
		if count%batchTriangles == 0 {
			rl.End()
			rl.DrawRenderBatchActive()
			rl.Begin(rl.Triangles)
		}
	}
	rl.End()
}

func (r *Renderer) DrawLabel(at mgl64.Vec3, text string, c color.RGBA) {
	x, y, _, ok := render.Project(r.proj.Top(), r.mv.Top(), at, float64(r.width), float64(r.height))
	if !ok {
		return
	}
	r.labels = append(r.labels, queuedLabel{x: int32(x), y: int32(y) - r.fontSize, text: text, c: c})
}

// BeginFrame records the framebuffer size and restores the 3D pipeline
// state the overlay pass of the previous frame switched off
func (r *Renderer) BeginFrame(width, height int) {
	r.SetViewport(width, height)
	r.SetState(render.DefaultState())
}

// FlushLabels draws queued labels in screen space. Call it after the scene
// has been displayed, outside of any custom projection. Depth testing stays
// off afterwards so 2D overlays are never hidden by the model.
func (r *Renderer) FlushLabels() {
	r.SetState(render.State{Blend: true})
	for _, l := range r.labels {
		rl.DrawText(l.text, l.x, l.y, r.fontSize, rl.NewColor(l.c.R, l.c.G, l.c.B, l.c.A))
	}
	r.labels = r.labels[:0]
}
