package model

import (
	"image/color"

	"github.com/philipparndt/printview/internal/render"
	"github.com/philipparndt/printview/pkg/geometry"
)

// Platform is the build plate grid centered at the origin on z=0
type Platform struct {
	Size  float64
	Pitch float64
	Color color.RGBA

	lines       []float32
	initialized bool
}

// NewPlatform creates a square grid of the given edge length and cell pitch
func NewPlatform(size, pitch float64) *Platform {
	return &Platform{
		Size:  size,
		Pitch: pitch,
		Color: color.RGBA{71, 71, 82, 255},
	}
}

func (p *Platform) Init() {
	p.lines = p.lines[:0]
	half := p.Size / 2
	if p.Pitch > 0 {
		for x := -half; x <= half+1e-9; x += p.Pitch {
			p.lines = flatten(p.lines, geometry.NewVector3(x, -half, 0), geometry.NewVector3(x, half, 0))
		}
		for y := -half; y <= half+1e-9; y += p.Pitch {
			p.lines = flatten(p.lines, geometry.NewVector3(-half, y, 0), geometry.NewVector3(half, y, 0))
		}
	}
	p.initialized = true
}

func (p *Platform) Initialized() bool {
	return p.initialized
}

// Display draws the grid. It is skipped in 2D mode where it would cover the model.
func (p *Platform) Display(r render.Renderer, ctx DisplayContext) {
	if ctx.Mode2D {
		return
	}
	r.DrawLines(p.lines, p.Color)
}
