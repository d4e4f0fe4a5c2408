package model

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/printview/internal/render"
	"github.com/philipparndt/printview/pkg/geometry"
)

// Mesh is a triangle mesh with an affine transform on top of the loaded
// coordinates.
//
// A vertex v is stored as R·(s·v) + t where s is the scaling factor,
// R = Rz·Ry·Rx is built from the per-axis rotation angles and t is the
// accumulated translation. The display offset is added on top when drawing
// and never reaches the stored vertices.
type Mesh struct {
	raw     []geometry.Vector3
	normals []geometry.Vector3

	translation geometry.Vector3
	offset      geometry.Vector3
	scaling     float64
	rotation    [3]float64

	modified      bool
	initialized   bool
	arrowsEnabled bool

	Color       color.RGBA
	ArrowColor  color.RGBA
	ArrowLength float64

	positions  []float32
	normalBuf  []float32
	arrowLines []float32
}

var _ Model = (*Mesh)(nil)
var _ MeshData = (*Mesh)(nil)

// NewMesh creates an empty mesh with identity transform
func NewMesh() *Mesh {
	return &Mesh{
		scaling:     1,
		Color:       color.RGBA{51, 153, 255, 255},
		ArrowColor:  color.RGBA{255, 200, 0, 255},
		ArrowLength: 2,
	}
}

// LoadData replaces the mesh geometry and resets the transform.
// normals may be empty, in which case they are derived on demand.
func (m *Mesh) LoadData(vertices, normals []geometry.Vector3) error {
	if len(vertices)%3 != 0 {
		return fmt.Errorf("%w: vertex count %d is not a multiple of 3", ErrGeometry, len(vertices))
	}
	if len(normals) > 0 && len(normals) != len(vertices)/3 {
		return fmt.Errorf("%w: %d normals for %d facets", ErrGeometry, len(normals), len(vertices)/3)
	}

	m.raw = append([]geometry.Vector3(nil), vertices...)
	m.normals = nil
	if len(normals) > 0 {
		m.normals = append([]geometry.Vector3(nil), normals...)
	}
	m.translation = geometry.Vector3{}
	m.offset = geometry.Vector3{}
	m.scaling = 1
	m.rotation = [3]float64{}
	m.modified = false
	m.initialized = false
	return nil
}

// FacetCount returns the number of triangles
func (m *Mesh) FacetCount() int {
	return len(m.raw) / 3
}

// CalculateNormals derives one facet normal per triangle from the loaded
// (untransformed) vertices, following their winding order.
func (m *Mesh) CalculateNormals() []geometry.Vector3 {
	normals := make([]geometry.Vector3, 0, len(m.raw)/3)
	for i := 0; i+2 < len(m.raw); i += 3 {
		normals = append(normals, geometry.FacetNormal(m.raw[i], m.raw[i+1], m.raw[i+2]))
	}
	return normals
}

// NormalDataEmpty reports whether no normals are stored
func (m *Mesh) NormalDataEmpty() bool {
	return len(m.normals) == 0
}

func (m *Mesh) ensureNormals() {
	if m.NormalDataEmpty() && len(m.raw) > 0 {
		m.normals = m.CalculateNormals()
	}
}

// Scale multiplies the scaling factor by factor
func (m *Mesh) Scale(factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("%w: scale factor must be positive, got %g", ErrGeometry, factor)
	}
	m.scaling *= factor
	m.modified = true
	return nil
}

// ScalingFactor returns the accumulated scale
func (m *Mesh) ScalingFactor() float64 {
	return m.scaling
}

// Translate moves the mesh data by the given delta
func (m *Mesh) Translate(dx, dy, dz float64) {
	m.translation = m.translation.Add(geometry.NewVector3(dx, dy, dz))
	m.modified = true
}

// Translation returns the accumulated translation of the mesh data
func (m *Mesh) Translation() geometry.Vector3 {
	return m.translation
}

// SetOffset places the mesh for display without marking it modified
func (m *Mesh) SetOffset(x, y, z float64) {
	m.offset = geometry.NewVector3(x, y, z)
}

// Offset returns the display offset
func (m *Mesh) Offset() geometry.Vector3 {
	return m.offset
}

// RotateRel rotates further by angle degrees around axis
func (m *Mesh) RotateRel(angle float64, axis geometry.Axis) {
	m.rotation[axis] += angle
	m.modified = true
}

// RotateAbs sets the rotation around axis, keeping the other axes
func (m *Mesh) RotateAbs(angle float64, axis geometry.Axis) {
	m.rotation[axis] = angle
	m.modified = true
}

// Rotation returns the stored angle in degrees for axis
func (m *Mesh) Rotation(axis geometry.Axis) float64 {
	return m.rotation[axis]
}

// RotationMatrix returns Rz·Ry·Rx for the stored angles
func (m *Mesh) RotationMatrix() mgl64.Mat3 {
	rx := mgl64.Rotate3DX(mgl64.DegToRad(m.rotation[geometry.AxisX]))
	ry := mgl64.Rotate3DY(mgl64.DegToRad(m.rotation[geometry.AxisY]))
	rz := mgl64.Rotate3DZ(mgl64.DegToRad(m.rotation[geometry.AxisZ]))
	return rz.Mul3(ry).Mul3(rx)
}

// shaped applies scale and rotation without any translation
func (m *Mesh) shaped() []geometry.Vector3 {
	rot := m.RotationMatrix()
	out := make([]geometry.Vector3, len(m.raw))
	for i, v := range m.raw {
		out[i] = geometry.FromVec3(rot.Mul3x1(v.Vec3().Mul(m.scaling)))
	}
	return out
}

// Vertices returns the transformed vertices in facet order, without the
// display offset
func (m *Mesh) Vertices() []geometry.Vector3 {
	out := m.shaped()
	for i := range out {
		out[i] = out[i].Add(m.translation)
	}
	return out
}

// Normals returns the rotated facet normals, deriving them when absent
func (m *Mesh) Normals() []geometry.Vector3 {
	m.ensureNormals()
	rot := m.RotationMatrix()
	out := make([]geometry.Vector3, len(m.normals))
	for i, n := range m.normals {
		out[i] = geometry.FromVec3(rot.Mul3x1(n.Vec3())).Normalize()
	}
	return out
}

// BoundingBox returns the bounds of the mesh as displayed
func (m *Mesh) BoundingBox() geometry.BoundingBox {
	box := m.LocalBoundingBox()
	return geometry.BoundingBox{Min: box.Min.Add(m.offset), Max: box.Max.Add(m.offset)}
}

// LocalBoundingBox returns the bounds of the transformed vertices
func (m *Mesh) LocalBoundingBox() geometry.BoundingBox {
	return geometry.BoundingBoxOf(m.Vertices())
}

// Width returns the extent along X
func (m *Mesh) Width() float64 {
	return m.BoundingBox().Size().X
}

// Depth returns the extent along Y
func (m *Mesh) Depth() float64 {
	return m.BoundingBox().Size().Y
}

// Height returns the extent along Z
func (m *Mesh) Height() float64 {
	return m.BoundingBox().Size().Z
}

// Dimension returns the extent for d
func (m *Mesh) Dimension(d Dimension) float64 {
	switch d {
	case Depth:
		return m.Depth()
	case Height:
		return m.Height()
	}
	return m.Width()
}

// Modified reports unsaved geometry changes
func (m *Mesh) Modified() bool {
	return m.modified
}

// ClearModified marks the mesh as saved
func (m *Mesh) ClearModified() {
	m.modified = false
}

// SetArrowsEnabled toggles normal arrows; takes effect on the next Init
func (m *Mesh) SetArrowsEnabled(enabled bool) {
	m.arrowsEnabled = enabled
}

// ArrowsEnabled reports whether normal arrows are drawn
func (m *Mesh) ArrowsEnabled() bool {
	return m.arrowsEnabled
}

// Init rebuilds the render buffers from the current transform
func (m *Mesh) Init() {
	m.ensureNormals()
	shaped := m.shaped()
	normals := m.Normals()

	m.positions = flatten(make([]float32, 0, len(shaped)*3), shaped...)
	m.normalBuf = make([]float32, 0, len(shaped)*3)
	m.arrowLines = m.arrowLines[:0]
	for i, n := range normals {
		m.normalBuf = flatten(m.normalBuf, n, n, n)

		if m.arrowsEnabled {
			center := shaped[i*3].Add(shaped[i*3+1]).Add(shaped[i*3+2]).Mul(1.0 / 3)
			m.arrowLines = flatten(m.arrowLines, center, center.Add(n.Mul(m.ArrowLength)))
		}
	}
	m.initialized = true
}

// Initialized reports whether Init ran since the last load
func (m *Mesh) Initialized() bool {
	return m.initialized
}

// Display draws the mesh, translated by its translation and display offset
func (m *Mesh) Display(r render.Renderer, ctx DisplayContext) {
	r.PushMatrix()
	defer r.PopMatrix()

	t := m.translation.Add(m.offset)
	r.MultMatrix(mgl64.Translate3D(t.X, t.Y, t.Z))
	r.DrawTriangles(m.positions, m.normalBuf, m.Color)
	if m.arrowsEnabled && len(m.arrowLines) > 0 {
		r.DrawLines(m.arrowLines, m.ArrowColor)
	}
}
