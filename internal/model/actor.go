// Package model holds the renderable actors of a scene: the triangle mesh
// transform engine, the layered toolpath and supporting overlays.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/philipparndt/printview/internal/render"
	"github.com/philipparndt/printview/pkg/geometry"
)

// ErrGeometry reports malformed vertex data or an invalid transform argument
var ErrGeometry = errors.New("geometry error")

// DisplayContext carries camera derived values to actors.
//
// In perspective mode EyeHeight is the height of the line of sight at the
// model's depth. In ortho mode Elevation is the negated camera elevation and
// EyeHeight is unset.
type DisplayContext struct {
	EyeHeight float64
	Elevation float64
	ModeOrtho bool
	Mode2D    bool
}

// Actor is anything a scene can draw
type Actor interface {
	Init()
	Initialized() bool
	Display(r render.Renderer, ctx DisplayContext)
}

// Model is a primary actor loaded from a file
type Model interface {
	Actor
	// BoundingBox includes the display offset, LocalBoundingBox does not
	BoundingBox() geometry.BoundingBox
	LocalBoundingBox() geometry.BoundingBox
	// Translate moves the model data and marks it modified
	Translate(dx, dy, dz float64)
	// SetOffset moves the model on screen only
	SetOffset(x, y, z float64)
	Offset() geometry.Vector3
	Modified() bool
	ClearModified()
}

// MeshData is the facet data written to STL
type MeshData interface {
	Vertices() []geometry.Vector3
	Normals() []geometry.Vector3
}

// Dimension names a bounding box extent
type Dimension int

const (
	Width  Dimension = iota // Along X
	Depth                   // Along Y
	Height                  // Along Z
)

// String returns the dimension name
func (d Dimension) String() string {
	switch d {
	case Width:
		return "width"
	case Depth:
		return "depth"
	case Height:
		return "height"
	}
	return "unknown"
}

// ParseDimension maps "width", "depth" or "height" to a Dimension
func ParseDimension(name string) (Dimension, error) {
	switch strings.ToLower(name) {
	case "width":
		return Width, nil
	case "depth":
		return Depth, nil
	case "height":
		return Height, nil
	}
	return 0, fmt.Errorf("invalid dimension %q: expected width, depth or height", name)
}

// flatten appends the xyz components of points as float32
func flatten(dst []float32, points ...geometry.Vector3) []float32 {
	for _, p := range points {
		dst = append(dst, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return dst
}
