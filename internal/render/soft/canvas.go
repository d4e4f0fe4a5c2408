// Package soft is a software rasterizer implementing render.Renderer on an
// image.RGBA. It backs snapshots and the panel viewport.
package soft

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/printview/internal/render"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas renders into an RGBA image with a depth buffer
type Canvas struct {
	img           *image.RGBA
	zbuf          []float64
	width, height int

	proj  *render.MatrixStack
	mv    *render.MatrixStack
	state render.State
	face  font.Face
}

var _ render.Renderer = (*Canvas)(nil)

// New creates a canvas of the given pixel size
func New(width, height int) *Canvas {
	c := &Canvas{
		proj:  render.NewMatrixStack(),
		mv:    render.NewMatrixStack(),
		state: render.DefaultState(),
		face:  basicfont.Face7x13,
	}
	c.Resize(width, height)
	return c
}

// Resize reallocates the color and depth buffers when the size changes
func (c *Canvas) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if c.img != nil && width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	c.zbuf = make([]float64, width*height)
	c.clearDepth()
}

// Size returns the canvas size in pixels
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// Image returns the backing image
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear fills the color buffer with bg and resets the depth buffer
func (c *Canvas) Clear(bg color.RGBA) {
	pix := c.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = bg.R
		pix[i+1] = bg.G
		pix[i+2] = bg.B
		pix[i+3] = bg.A
	}
	c.clearDepth()
}

func (c *Canvas) clearDepth() {
	for i := range c.zbuf {
		c.zbuf[i] = math.Inf(1)
	}
}

// WritePNG encodes the current image as PNG
func (c *Canvas) WritePNG(w io.Writer) error {
	if err := png.Encode(w, c.img); err != nil {
		return fmt.Errorf("error encoding png: %w", err)
	}
	return nil
}

func (c *Canvas) PushProjection(p mgl64.Mat4) {
	c.proj.Push()
	c.proj.Load(p)
}

func (c *Canvas) PopProjection() { c.proj.Pop() }
func (c *Canvas) PushMatrix()    { c.mv.Push() }
func (c *Canvas) PopMatrix()     { c.mv.Pop() }
func (c *Canvas) LoadIdentity()  { c.mv.Load(mgl64.Ident4()) }

func (c *Canvas) MultMatrix(m mgl64.Mat4) {
	c.mv.Mult(m)
}

func (c *Canvas) SetState(s render.State) {
	c.state = s
}

func (c *Canvas) project(x, y, z float32) (screenVertex, bool) {
	sx, sy, sz, ok := render.Project(c.proj.Top(), c.mv.Top(),
		mgl64.Vec3{float64(x), float64(y), float64(z)}, float64(c.width), float64(c.height))
	return screenVertex{sx, sy, sz}, ok
}

func (c *Canvas) DrawLines(vertices []float32, col color.RGBA) {
	for i := 0; i+5 < len(vertices); i += 6 {
		a, okA := c.project(vertices[i], vertices[i+1], vertices[i+2])
		b, okB := c.project(vertices[i+3], vertices[i+4], vertices[i+5])
		if !okA || !okB {
			continue
		}
		c.drawLine(a, b, col)
	}
}

func (c *Canvas) DrawTriangles(vertices, normals []float32, col color.RGBA) {
	for i := 0; i+8 < len(vertices); i += 9 {
		a, okA := c.project(vertices[i], vertices[i+1], vertices[i+2])
		b, okB := c.project(vertices[i+3], vertices[i+4], vertices[i+5])
		d, okD := c.project(vertices[i+6], vertices[i+7], vertices[i+8])
		if !okA || !okB || !okD {
			continue
		}

		// Window y points down, so counter-clockwise faces have negative area
		area := (b.x-a.x)*(d.y-a.y) - (d.x-a.x)*(b.y-a.y)
		if c.state.CullFace && area >= 0 {
			continue
		}

		shaded := col
		if i+2 < len(normals) {
			shaded = render.Shade(col, normals[i], normals[i+1], normals[i+2])
		}
		c.fillTriangle(a, b, d, shaded)
	}
}

func (c *Canvas) DrawLabel(at mgl64.Vec3, text string, col color.RGBA) {
	x, y, _, ok := render.Project(c.proj.Top(), c.mv.Top(), at, float64(c.width), float64(c.height))
	if !ok {
		return
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.P(int(x), int(y)),
	}
	d.DrawString(text)
}
