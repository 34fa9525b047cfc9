package physics

import "math"

// PinnedMassFactor multiplies the mass of pinned particles during constraint
// solving.
const PinnedMassFactor = 100000

// minLength is the distance below which a constraint has no usable direction
// and is skipped.
const minLength = 1e-12

// Constraint keeps two particles at the distance they had when it was built.
type Constraint struct {
	A, B *Particle
	Rest float64
	// Size is a render radius; 0 marks a logical link (bend resistance).
	Size float64
	// Stiffness is carried from the template for consumers; Solve always
	// applies the full mass-weighted correction.
	Stiffness float64
}

func NewConstraint(a, b *Particle, size, stiffness float64) *Constraint {
	return &Constraint{
		A:         a,
		B:         b,
		Rest:      a.Pos.Distance(b.Pos),
		Size:      size,
		Stiffness: stiffness,
	}
}

func (c *Constraint) Length() float64 {
	return c.A.Pos.Distance(c.B.Pos)
}

// Error is the signed deviation from the rest length.
func (c *Constraint) Error() float64 {
	return c.Length() - c.Rest
}

// Solve moves both endpoints toward the rest distance, split by inverse
// weight. Coincident endpoints are skipped.
func (c *Constraint) Solve() {
	a, b := &c.A.Pos, &c.B.Pos
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	cur := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if cur < minLength {
		return
	}
	delta := 0.5 * (cur - c.Rest) / cur
	dx *= delta
	dy *= delta
	dz *= delta

	wa := c.A.weight()
	wb := c.B.weight()
	total := wa + wb
	sa := wb / total
	sb := wa / total

	b.X += dx * sb
	b.Y += dy * sb
	b.Z += dz * sb
	a.X -= dx * sa
	a.Y -= dy * sa
	a.Z -= dz * sa
}
