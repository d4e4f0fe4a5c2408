package stl

import (
	"github.com/philipparndt/printview/pkg/geometry"
)

// Model represents a complete STL model
type Model struct {
	Name      string
	Triangles []geometry.Triangle
}

// NewModel creates a new STL model
func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		Triangles: make([]geometry.Triangle, 0),
	}
}

// AddTriangle adds a triangle to the model
func (m *Model) AddTriangle(triangle geometry.Triangle) {
	m.Triangles = append(m.Triangles, triangle)
}

// TriangleCount returns the number of triangles in the model
func (m *Model) TriangleCount() int {
	return len(m.Triangles)
}

// Vertices flattens the facets into a vertex buffer, three entries per facet
func (m *Model) Vertices() []geometry.Vector3 {
	vertices := make([]geometry.Vector3, 0, len(m.Triangles)*3)
	for _, triangle := range m.Triangles {
		vertices = append(vertices, triangle.V1, triangle.V2, triangle.V3)
	}
	return vertices
}

// Normals returns the stored facet normals, one per facet.
// Nil is returned when the file carried no usable normals (all zero).
func (m *Model) Normals() []geometry.Vector3 {
	normals := make([]geometry.Vector3, len(m.Triangles))
	present := false
	for i, triangle := range m.Triangles {
		normals[i] = triangle.Normal
		if !triangle.Normal.IsZero() {
			present = true
		}
	}
	if !present {
		return nil
	}
	return normals
}

// BoundingBox calculates the bounding box of the entire model
func (m *Model) BoundingBox() geometry.BoundingBox {
	return geometry.BoundingBoxOf(m.Vertices())
}

// SurfaceArea calculates the total surface area of the model
func (m *Model) SurfaceArea() float64 {
	totalArea := 0.0
	for _, triangle := range m.Triangles {
		totalArea += triangle.Area()
	}
	return totalArea
}
