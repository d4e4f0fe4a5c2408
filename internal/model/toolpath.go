package model

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/printview/internal/render"
	"github.com/philipparndt/printview/pkg/gcode"
	"github.com/philipparndt/printview/pkg/geometry"
)

// Toolpath draws printed layers as line segments
type Toolpath struct {
	layers          []gcode.Layer
	numLayersToDraw int

	translation geometry.Vector3
	offset      geometry.Vector3
	modified    bool
	initialized bool

	ShowTravel   bool
	Color        color.RGBA
	TravelColor  color.RGBA
	CurrentColor color.RGBA

	extrude [][]float32
	travel  [][]float32
}

var _ Model = (*Toolpath)(nil)

// NewToolpath creates an empty toolpath
func NewToolpath() *Toolpath {
	return &Toolpath{
		Color:        color.RGBA{255, 140, 26, 255},
		TravelColor:  color.RGBA{90, 90, 90, 128},
		CurrentColor: color.RGBA{255, 255, 255, 255},
	}
}

// LoadData replaces the layers and shows all of them
func (t *Toolpath) LoadData(layers []gcode.Layer) {
	t.layers = layers
	t.numLayersToDraw = len(layers)
	t.translation = geometry.Vector3{}
	t.offset = geometry.Vector3{}
	t.modified = false
	t.initialized = false
}

// Layers returns the parsed layers
func (t *Toolpath) Layers() []gcode.Layer {
	return t.layers
}

// LayerCount returns the number of layers
func (t *Toolpath) LayerCount() int {
	return len(t.layers)
}

// NumLayersToDraw returns how many layers from the bottom are visible
func (t *Toolpath) NumLayersToDraw() int {
	return t.numLayersToDraw
}

// SetNumLayersToDraw limits rendering to the lowest n layers
func (t *Toolpath) SetNumLayersToDraw(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(t.layers) {
		n = len(t.layers)
	}
	t.numLayersToDraw = n
}

// BoundingBox returns the bounds of the extruded segments as displayed
func (t *Toolpath) BoundingBox() geometry.BoundingBox {
	box := t.LocalBoundingBox()
	if box.Empty() {
		return box
	}
	return geometry.BoundingBox{Min: box.Min.Add(t.offset), Max: box.Max.Add(t.offset)}
}

// LocalBoundingBox returns the bounds of the extruded segments without the
// display offset
func (t *Toolpath) LocalBoundingBox() geometry.BoundingBox {
	box := geometry.NewBoundingBox()
	for _, layer := range t.layers {
		for _, seg := range layer.Segments {
			if seg.Type == gcode.Extrude {
				box.Extend(seg.From)
				box.Extend(seg.To)
			}
		}
	}
	if box.Empty() {
		return geometry.BoundingBox{}
	}
	return geometry.BoundingBox{Min: box.Min.Add(t.translation), Max: box.Max.Add(t.translation)}
}

// Translate moves the toolpath
func (t *Toolpath) Translate(dx, dy, dz float64) {
	t.translation = t.translation.Add(geometry.NewVector3(dx, dy, dz))
	t.modified = true
}

// SetOffset places the toolpath for display without marking it modified
func (t *Toolpath) SetOffset(x, y, z float64) {
	t.offset = geometry.NewVector3(x, y, z)
}

// Offset returns the display offset
func (t *Toolpath) Offset() geometry.Vector3 {
	return t.offset
}

// Modified reports unsaved changes
func (t *Toolpath) Modified() bool {
	return t.modified
}

// ClearModified marks the toolpath as saved
func (t *Toolpath) ClearModified() {
	t.modified = false
}

// Init builds one line buffer per layer
func (t *Toolpath) Init() {
	t.extrude = make([][]float32, len(t.layers))
	t.travel = make([][]float32, len(t.layers))
	for i, layer := range t.layers {
		for _, seg := range layer.Segments {
			switch seg.Type {
			case gcode.Extrude:
				t.extrude[i] = flatten(t.extrude[i], seg.From, seg.To)
			case gcode.Travel:
				t.travel[i] = flatten(t.travel[i], seg.From, seg.To)
			}
		}
	}
	t.initialized = true
}

// Initialized reports whether Init ran since the last load
func (t *Toolpath) Initialized() bool {
	return t.initialized
}

// DrawOrder returns the indices of visible layers in paint order.
//
// Translucent layers blend correctly only when painted far to near. In
// perspective mode layers below the line of sight are seen from above and
// are painted bottom up, then the layers above it top down. In ortho mode the
// elevation alone decides.
func (t *Toolpath) DrawOrder(ctx DisplayContext) []int {
	n := t.numLayersToDraw
	order := make([]int, 0, n)

	if ctx.ModeOrtho || ctx.Mode2D {
		fromAbove := ctx.Mode2D || ctx.Elevation >= 0
		for i := 0; i < n; i++ {
			if fromAbove {
				order = append(order, i)
			} else {
				order = append(order, n-1-i)
			}
		}
		return order
	}

	eye := ctx.EyeHeight - t.translation.Z - t.offset.Z
	split := 0
	for split < n && t.layers[split].Z <= eye {
		split++
	}
	for i := 0; i < split; i++ {
		order = append(order, i)
	}
	for i := n - 1; i >= split; i-- {
		order = append(order, i)
	}
	return order
}

// Display draws the visible layers; the topmost visible layer is highlighted
func (t *Toolpath) Display(r render.Renderer, ctx DisplayContext) {
	r.PushMatrix()
	defer r.PopMatrix()

	shift := t.translation.Add(t.offset)
	r.MultMatrix(mgl64.Translate3D(shift.X, shift.Y, shift.Z))
	top := t.numLayersToDraw - 1
	for _, i := range t.DrawOrder(ctx) {
		if i >= len(t.extrude) {
			continue
		}
		c := t.Color
		if i == top && top < len(t.layers)-1 {
			c = t.CurrentColor
		}
		if len(t.extrude[i]) > 0 {
			r.DrawLines(t.extrude[i], c)
		}
		if t.ShowTravel && len(t.travel[i]) > 0 {
			r.DrawLines(t.travel[i], t.TravelColor)
		}
	}
}
