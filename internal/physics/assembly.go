package physics

import "github.com/san-kum/marionette/internal/vecmath"

// Assembly is a particle/constraint structure built from a Template. It is
// the unit of simulation and of rendering.
type Assembly struct {
	Particles   []*Particle
	Constraints []*Constraint

	byName map[string]*Particle
}

// NewAssembly builds one particle per node, shifted by offset, and one
// constraint per link. Rest lengths come from the shifted positions.
func NewAssembly(t *Template, offset vecmath.Vec3) (*Assembly, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	a := &Assembly{
		Particles:   make([]*Particle, 0, len(t.Nodes)),
		Constraints: make([]*Constraint, 0, len(t.Links)),
		byName:      make(map[string]*Particle, len(t.Nodes)),
	}
	for _, spec := range t.Nodes {
		p := NewParticle(spec.Name, spec)
		p.Pos.Add(offset)
		p.Old.Add(offset)
		a.Particles = append(a.Particles, p)
		a.byName[spec.Name] = p
	}
	for _, l := range t.Links {
		a.Constraints = append(a.Constraints, NewConstraint(a.byName[l.A], a.byName[l.B], l.Size, l.Stiffness))
	}
	return a, nil
}

// Particle looks a particle up by its template name.
func (a *Assembly) Particle(name string) (*Particle, bool) {
	p, ok := a.byName[name]
	return p, ok
}

func (a *Assembly) Integrate(dt float64, env Params) {
	for _, p := range a.Particles {
		p.Integrate(dt, env)
	}
}

func (a *Assembly) Collide(ground float64) {
	for _, p := range a.Particles {
		p.CollideGround(ground)
	}
}

// Solve relaxes every constraint once, in declaration order.
func (a *Assembly) Solve() {
	for _, c := range a.Constraints {
		c.Solve()
	}
}

// Step runs one sub-step: integrate, collide, solve.
func (a *Assembly) Step(dt float64, env Params, ground float64) {
	a.Integrate(dt, env)
	a.Collide(ground)
	a.Solve()
}

// SquaredError sums the squared rest-length deviation of all constraints.
func (a *Assembly) SquaredError() float64 {
	var sum float64
	for _, c := range a.Constraints {
		e := c.Error()
		sum += e * e
	}
	return sum
}
