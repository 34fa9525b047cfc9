package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/san-kum/marionette/internal/vecmath"
)

const (
	fieldOfView = 60
	nearPlane   = 0.01
	farPlane    = 100

	minZoom = 0.3
	maxZoom = 5
)

// Camera follows the stage's view translation with a critically damped
// spring and projects world points onto a canvas.
type Camera struct {
	// Zoom scales the distance to the stage.
	Zoom float64

	spring harmonica.Spring
	pos    [3]float64
	vel    [3]float64
	placed bool
}

func NewCamera(fps int, frequency, damping float64) *Camera {
	if fps <= 0 {
		fps = 30
	}
	return &Camera{
		Zoom:   1,
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
	}
}

// Follow moves one spring step toward the view translation t. The first
// call jumps straight to it.
func (c *Camera) Follow(t vecmath.Vec3) {
	target := [3]float64{t.X, t.Y, t.Z * c.Zoom}
	if !c.placed {
		c.pos, c.placed = target, true
		return
	}
	for i := range c.pos {
		c.pos[i], c.vel[i] = c.spring.Update(c.pos[i], c.vel[i], target[i])
	}
}

// Snap jumps to t without smoothing.
func (c *Camera) Snap(t vecmath.Vec3) {
	c.placed = false
	c.vel = [3]float64{}
	c.Follow(t)
}

// Position is the current view translation.
func (c *Camera) Position() vecmath.Vec3 {
	return vecmath.V(c.pos[0], c.pos[1], c.pos[2])
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Max(minZoom, c.Zoom/1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Min(maxZoom, c.Zoom*1.2) }

// Matrix is projection * view for a canvas of w x h dots.
func (c *Camera) Matrix(w, h int) *vecmath.Mat4 {
	aspect := 1.0
	if h > 0 {
		aspect = float64(w) / float64(h)
	}
	m := vecmath.NewMat4().Perspective(fieldOfView, aspect, nearPlane, farPlane)
	return m.Translate(c.pos[0], c.pos[1], c.pos[2])
}

// Project maps p to dot coordinates on a w x h canvas using m from Matrix.
// ok is false for points behind the near plane; on-canvas reports whether
// the point lands inside the canvas.
func (c *Camera) Project(m *vecmath.Mat4, p vecmath.Vec3, w, h int) (x, y int, depth float64, ok, onCanvas bool) {
	depth = -(p.Z + c.pos[2])
	if depth <= nearPlane {
		return 0, 0, depth, false, false
	}
	var ndc vecmath.Vec3
	ndc.TransformMat4(p, m)
	fx := (ndc.X + 1) / 2 * float64(w)
	fy := (1 - ndc.Y) / 2 * float64(h)

	// keep Bresenham walks bounded for points far off screen
	lim := float64(4 * (w + h))
	fx = math.Max(-lim, math.Min(lim, fx))
	fy = math.Max(-lim, math.Min(lim, fy))

	x, y = int(math.Floor(fx)), int(math.Floor(fy))
	return x, y, depth, true, x >= 0 && x < w && y >= 0 && y < h
}
