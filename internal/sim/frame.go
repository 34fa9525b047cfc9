package sim

import "github.com/san-kum/marionette/internal/vecmath"

// Frame is a read-only snapshot of every live assembly after a tick.
type Frame struct {
	Tick   int          `json:"tick"`
	Time   float64      `json:"time"`
	Dt     float64      `json:"dt"`
	Camera vecmath.Vec3 `json:"camera"`
	Bodies []Body       `json:"bodies"`
}

type Body struct {
	ID         string         `json:"id"`
	Slot       int            `json:"slot"`
	Controller vecmath.Vec3   `json:"controller"`
	Particles  []ParticleView `json:"particles"`
	Links      []LinkView     `json:"links"`
}

type ParticleView struct {
	Name   string       `json:"name"`
	Pos    vecmath.Vec3 `json:"pos"`
	Vel    vecmath.Vec3 `json:"vel"` // per second
	Radius float64      `json:"radius"`
	Mass   float64      `json:"mass"`
	Color  [3]float64   `json:"color"`
	Pinned bool         `json:"pinned,omitempty"`
}

// LinkView references its endpoints by index into Body.Particles.
type LinkView struct {
	A      int     `json:"a"`
	B      int     `json:"b"`
	Size   float64 `json:"size"`
	Rest   float64 `json:"rest"`
	Length float64 `json:"length"`
}

// ParticleCount sums particles over all bodies.
func (f *Frame) ParticleCount() int {
	n := 0
	for i := range f.Bodies {
		n += len(f.Bodies[i].Particles)
	}
	return n
}
