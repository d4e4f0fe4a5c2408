package soft

import (
	"image/color"
	"math"
)

type screenVertex struct {
	x, y, z float64
}

// fillTriangle fills a triangle with scanlines and per-pixel depth interpolation
func (c *Canvas) fillTriangle(a, b, d screenVertex, col color.RGBA) {
	v := [3]screenVertex{a, b, d}

	// Sort vertices by Y coordinate (top to bottom)
	if v[0].y > v[1].y {
		v[0], v[1] = v[1], v[0]
	}
	if v[1].y > v[2].y {
		v[1], v[2] = v[2], v[1]
	}
	if v[0].y > v[1].y {
		v[0], v[1] = v[1], v[0]
	}

	x1, y1, z1 := v[0].x, v[0].y, v[0].z
	x2, y2, z2 := v[1].x, v[1].y, v[1].z
	x3, y3, z3 := v[2].x, v[2].y, v[2].z

	yStart := int(math.Max(0, math.Ceil(y1)))
	yEnd := int(math.Min(float64(c.height-1), y3))
	for y := yStart; y <= yEnd; y++ {
		fy := float64(y)

		var xs, zs [2]float64
		n := 0
		edge := func(xa, ya, za, xb, yb, zb float64) {
			if n == 2 || ya == yb || fy < ya || fy > yb {
				return
			}
			t := (fy - ya) / (yb - ya)
			xs[n] = xa + t*(xb-xa)
			zs[n] = za + t*(zb-za)
			n++
		}
		edge(x1, y1, z1, x3, y3, z3)
		edge(x1, y1, z1, x2, y2, z2)
		edge(x2, y2, z2, x3, y3, z3)
		if n < 2 {
			continue
		}

		xStart, xEnd, zStart, zEnd := xs[0], xs[1], zs[0], zs[1]
		if xStart > xEnd {
			xStart, xEnd = xEnd, xStart
			zStart, zEnd = zEnd, zStart
		}

		xFrom := int(math.Max(0, math.Ceil(xStart)))
		xTo := int(math.Min(float64(c.width-1), xEnd))
		for x := xFrom; x <= xTo; x++ {
			t := 0.0
			if xEnd != xStart {
				t = (float64(x) - xStart) / (xEnd - xStart)
			}
			c.plot(x, y, zStart+t*(zEnd-zStart), col)
		}
	}
}

// drawLine draws a depth-interpolated line using Bresenham's algorithm
func (c *Canvas) drawLine(a, b screenVertex, col color.RGBA) {
	x1, y1 := int(math.Round(a.x)), int(math.Round(a.y))
	x2, y2 := int(math.Round(b.x)), int(math.Round(b.y))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	steps := dx
	if dy > steps {
		steps = dy
	}

	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	step := 0
	for {
		t := 0.0
		if steps > 0 {
			t = float64(step) / float64(steps)
		}
		// Lines win depth ties against the faces they outline
		c.plot(x1, y1, a.z+t*(b.z-a.z)-1e-4, col)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
		step++
	}
}

// plot writes one pixel subject to the depth test and alpha blending
func (c *Canvas) plot(x, y int, z float64, col color.RGBA) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	idx := y*c.width + x
	if c.state.DepthTest {
		if z < -1 || z > 1 || z > c.zbuf[idx] {
			return
		}
		c.zbuf[idx] = z
	}

	if !c.state.Blend || col.A == 255 {
		c.img.SetRGBA(x, y, col)
		return
	}
	dst := c.img.RGBAAt(x, y)
	alpha := float64(col.A) / 255
	mix := func(s, d uint8) uint8 {
		return uint8(float64(s)*alpha + float64(d)*(1-alpha))
	}
	c.img.SetRGBA(x, y, color.RGBA{
		R: mix(col.R, dst.R),
		G: mix(col.G, dst.G),
		B: mix(col.B, dst.B),
		A: 255,
	})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
