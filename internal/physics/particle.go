package physics

import (
	"math"

	"github.com/san-kum/marionette/internal/vecmath"
)

const (
	DefaultFriction = 0.001
	DefaultGravity  = -9.81

	// groundSlip is the share of horizontal velocity lost per ground contact.
	groundSlip = 0.02
)

// Params are the integration tunables shared by every particle in a world.
type Params struct {
	Friction float64
	Gravity  float64 // applied to y only
}

func DefaultParams() Params {
	return Params{Friction: DefaultFriction, Gravity: DefaultGravity}
}

// Particle is a point mass integrated with position Verlet. Velocity is
// implicit in Pos-Old.
type Particle struct {
	Name   string
	Pos    vecmath.Vec3
	Old    vecmath.Vec3
	Radius float64
	Mass   float64
	Color  [3]float64
	Free   bool
}

// NewParticle creates a particle at rest at spec.Pos.
func NewParticle(name string, spec NodeSpec) *Particle {
	mass := spec.Mass
	if mass == 0 {
		mass = 1.0
	}
	return &Particle{
		Name:   name,
		Pos:    spec.Pos,
		Old:    spec.Pos,
		Radius: RadiusForVolume(spec.Volume),
		Mass:   mass,
		Color:  spec.Color,
		Free:   !spec.Pinned,
	}
}

func RadiusForVolume(volume float64) float64 {
	return math.Cbrt(volume) / 15
}

// Integrate advances a free particle by one Verlet step. Pinned particles
// are left alone.
func (p *Particle) Integrate(dt float64, env Params) {
	if !p.Free {
		return
	}
	prev := p.Pos
	f := env.Friction
	p.Pos.X = p.Pos.X*(2-f) - p.Old.X*(1-f)
	p.Pos.Y = p.Pos.Y*(2-f) - p.Old.Y*(1-f) + env.Gravity*dt*dt
	p.Pos.Z = p.Pos.Z*(2-f) - p.Old.Z*(1-f)
	p.Old = prev
}

// CollideGround pushes the particle out of the plane y = height. The
// correction reflects half the penetration and bleeds off some horizontal
// velocity.
func (p *Particle) CollideGround(height float64) {
	limit := height + p.Radius
	if p.Pos.Y > limit {
		return
	}
	p.Pos.X -= (p.Pos.X - p.Old.X) * groundSlip
	p.Pos.Z -= (p.Pos.Z - p.Old.Z) * groundSlip
	p.Pos.Y = limit + (limit-p.Pos.Y)*0.5
	p.Old.Y = limit + (limit-p.Old.Y)*0.5
}

// Velocity returns the displacement over the last step.
func (p *Particle) Velocity() vecmath.Vec3 {
	v := p.Pos
	return *v.Sub(p.Old)
}

// Place moves the particle and pins it at rest, so releasing it later does
// not turn the move into velocity.
func (p *Particle) Place(pos vecmath.Vec3) {
	p.Pos = pos
	p.Old = pos
	p.Free = false
}

// weight is the particle's share in constraint resolution.
func (p *Particle) weight() float64 {
	if p.Free {
		return p.Mass
	}
	return p.Mass * PinnedMassFactor
}
