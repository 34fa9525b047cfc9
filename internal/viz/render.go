package viz

import (
	"math"

	"github.com/san-kum/marionette/internal/sim"
	"github.com/san-kum/marionette/internal/vecmath"
)

// RenderOptions select what Render draws besides visible links.
type RenderOptions struct {
	// Hidden also draws zero-size links, i.e. the rope bend braces.
	Hidden bool
	Ground bool
	// GroundHeight is the y of the floor line when Ground is set.
	GroundHeight float64
}

// Render clears c and draws every body in f as seen from cam.
func Render(c *Canvas, cam *Camera, f *sim.Frame, opts RenderOptions) {
	c.Clear()
	if f == nil {
		return
	}
	w, h := c.Dots()
	m := cam.Matrix(w, h)

	if opts.Ground {
		drawGround(c, cam, m, f, opts.GroundHeight, w, h)
	}

	for i := range f.Bodies {
		b := &f.Bodies[i]
		for _, l := range b.Links {
			if l.Size == 0 && !opts.Hidden {
				continue
			}
			if l.A < 0 || l.A >= len(b.Particles) || l.B < 0 || l.B >= len(b.Particles) {
				continue
			}
			x0, y0, _, ok0, in0 := cam.Project(m, b.Particles[l.A].Pos, w, h)
			x1, y1, _, ok1, in1 := cam.Project(m, b.Particles[l.B].Pos, w, h)
			if !ok0 || !ok1 || (!in0 && !in1) {
				continue
			}
			c.DrawLine(x0, y0, x1, y1)
		}
		for _, p := range b.Particles {
			if p.Radius <= 0 {
				continue
			}
			x, y, _, ok, in := cam.Project(m, p.Pos, w, h)
			if !ok || !in {
				continue
			}
			edge := p.Pos
			edge.X += p.Radius
			ex, _, _, _, _ := cam.Project(m, edge, w, h)
			r := absInt(ex - x)
			if r > 6 {
				r = 6
			}
			c.Disc(x, y, r)
		}
	}
}

// drawGround draws a floor line under the spread of the bodies.
func drawGround(c *Canvas, cam *Camera, m *vecmath.Mat4, f *sim.Frame, g float64, w, h int) {
	minx, maxx := -1.0, 1.0
	for i := range f.Bodies {
		x := f.Bodies[i].Controller.X
		minx = math.Min(minx, x-2)
		maxx = math.Max(maxx, x+2)
	}
	x0, y0, _, ok0, _ := cam.Project(m, vecmath.V(minx, g, 0), w, h)
	x1, y1, _, ok1, _ := cam.Project(m, vecmath.V(maxx, g, 0), w, h)
	if ok0 && ok1 {
		c.DrawLine(x0, y0, x1, y1)
	}
}
