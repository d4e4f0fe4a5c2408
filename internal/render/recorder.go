package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// LineBatch is a recorded DrawLines call
type LineBatch struct {
	Vertices  []float32
	Color     color.RGBA
	ModelView mgl64.Mat4
}

// TriangleBatch is a recorded DrawTriangles call
type TriangleBatch struct {
	Vertices  []float32
	Normals   []float32
	Color     color.RGBA
	ModelView mgl64.Mat4
}

// Label is a recorded DrawLabel call
type Label struct {
	At    mgl64.Vec3
	Text  string
	Color color.RGBA
}

// Recorder is a headless Renderer that keeps every draw call and tracks
// matrix stack balance.
type Recorder struct {
	Projection *MatrixStack
	ModelView  *MatrixStack
	State      State

	Lines     []LineBatch
	Triangles []TriangleBatch
	Labels    []Label

	// Underflows counts pops on an empty stack
	Underflows int
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{
		Projection: NewMatrixStack(),
		ModelView:  NewMatrixStack(),
	}
}

// Reset drops recorded draw calls, keeping the matrix stacks
func (r *Recorder) Reset() {
	r.Lines = nil
	r.Triangles = nil
	r.Labels = nil
}

func (r *Recorder) PushProjection(p mgl64.Mat4) {
	r.Projection.Push()
	r.Projection.Load(p)
}

func (r *Recorder) PopProjection() {
	if !r.Projection.Pop() {
		r.Underflows++
	}
}

func (r *Recorder) PushMatrix() {
	r.ModelView.Push()
}

func (r *Recorder) PopMatrix() {
	if !r.ModelView.Pop() {
		r.Underflows++
	}
}

func (r *Recorder) LoadIdentity() {
	r.ModelView.Load(mgl64.Ident4())
}

func (r *Recorder) MultMatrix(m mgl64.Mat4) {
	r.ModelView.Mult(m)
}

func (r *Recorder) SetState(s State) {
	r.State = s
}

func (r *Recorder) DrawLines(vertices []float32, c color.RGBA) {
	r.Lines = append(r.Lines, LineBatch{Vertices: vertices, Color: c, ModelView: r.ModelView.Top()})
}

func (r *Recorder) DrawTriangles(vertices, normals []float32, c color.RGBA) {
	r.Triangles = append(r.Triangles, TriangleBatch{
		Vertices:  vertices,
		Normals:   normals,
		Color:     c,
		ModelView: r.ModelView.Top(),
	})
}

func (r *Recorder) DrawLabel(at mgl64.Vec3, text string, c color.RGBA) {
	r.Labels = append(r.Labels, Label{At: at, Text: text, Color: c})
}

// Balanced reports whether every push was matched by a pop
func (r *Recorder) Balanced() bool {
	return r.Projection.Depth() == 0 && r.ModelView.Depth() == 0 && r.Underflows == 0
}
