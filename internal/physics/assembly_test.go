package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/marionette/internal/physics"
	"github.com/san-kum/marionette/internal/vecmath"
)

func ladder() *physics.Template {
	t := physics.NewTemplate()
	names := []string{"top", "l1", "r1", "l2", "r2"}
	pos := []vecmath.Vec3{
		vecmath.V(0, 1, 0),
		vecmath.V(-0.2, 0.7, 0.1),
		vecmath.V(0.2, 0.7, -0.1),
		vecmath.V(-0.2, 0.4, 0),
		vecmath.V(0.2, 0.4, 0),
	}
	for i, n := range names {
		Expect(t.AddNode(physics.NodeSpec{Name: n, Pos: pos[i], Volume: 0.03, Mass: 105, Pinned: n == "top"})).To(Succeed())
	}
	t.Link("top", "l1", 0.01, 0.5)
	t.Link("top", "r1", 0.01, 0.5)
	t.Link("l1", "r1", 0.01, 0.5)
	t.Link("l1", "l2", 0.01, 0.5)
	t.Link("r1", "r2", 0.01, 0.5)
	t.Link("l2", "r2", 0.01, 0.5)
	t.Link("l1", "r2", 0, 0.5)
	return t
}

var _ = Describe("Assembly", func() {
	var asm *physics.Assembly

	BeforeEach(func() {
		var err error
		asm, err = physics.NewAssembly(ladder(), vecmath.V(0, 0.5, 0))
		Expect(err).NotTo(HaveOccurred())
	})

	It("keeps pinned particles in place while stepping", func() {
		top, ok := asm.Particle("top")
		Expect(ok).To(BeTrue())
		start := top.Pos

		for i := 0; i < 200; i++ {
			asm.Step(1.0/600, physics.DefaultParams(), -1)
		}

		Expect(top.Pos.Distance(start)).To(BeNumerically("<", 1e-3))
	})

	It("keeps the structure near its rest lengths under gravity", func() {
		for i := 0; i < 2000; i++ {
			asm.Step(1.0/1200, physics.DefaultParams(), -1)
		}
		for _, c := range asm.Constraints {
			Expect(math.Abs(c.Error())).To(BeNumerically("<", 0.05*c.Rest+1e-3))
		}
	})

	It("is reproducible for a fixed dt", func() {
		other, err := physics.NewAssembly(ladder(), vecmath.V(0, 0.5, 0))
		Expect(err).NotTo(HaveOccurred())

		p := physics.Params{Friction: 0.002, Gravity: physics.DefaultGravity}
		for i := 0; i < 500; i++ {
			asm.Step(1.0/1200, p, -1)
			other.Step(1.0/1200, p, -1)
		}
		for i := range asm.Particles {
			Expect(asm.Particles[i].Pos).To(Equal(other.Particles[i].Pos))
			Expect(asm.Particles[i].Old).To(Equal(other.Particles[i].Old))
		}
	})
})

var _ = Describe("ground collision", func() {
	const ground = -1.0

	DescribeTable("never leaves a particle below the plane",
		func(y, vy, volume float64) {
			p := physics.NewParticle("p", physics.NodeSpec{Pos: vecmath.V(0.3, y, -0.1), Volume: volume})
			p.Old.Y = y - vy
			limit := ground + p.Radius
			env := physics.DefaultParams()

			for i := 0; i < 500; i++ {
				p.Integrate(1.0/600, env)
				p.CollideGround(ground)
				Expect(p.Pos.Y).To(BeNumerically(">=", limit-1e-12))
			}
		},
		Entry("dropped from rest", 2.0, 0.0, 0.03),
		Entry("thrown down", 0.0, -0.5, 0.03),
		Entry("starting inside the ground", -3.0, 0.0, 0.2),
		Entry("fast and tiny", 1.0, -2.0, 0.0),
		Entry("moving up", -1.0, 0.1, 0.1),
	)
})

var _ = Describe("pinned weighting", func() {
	It("moves a pinned endpoint at most 1/PinnedMassFactor of the free one", func() {
		a := physics.NewParticle("a", physics.NodeSpec{Pinned: true, Mass: 3})
		b := physics.NewParticle("b", physics.NodeSpec{Pos: vecmath.V(0, 1, 0), Mass: 3})
		c := physics.NewConstraint(a, b, 0.01, 0.5)
		b.Pos.Set(0, 3, 0)

		c.Solve()

		da := a.Pos.Length()
		db := math.Abs(b.Pos.Y - 3)
		Expect(db).To(BeNumerically(">", 0))
		Expect(da / db).To(BeNumerically("<=", 1.0/physics.PinnedMassFactor*(1+1e-9)))
	})

	It("never integrates a pinned particle", func() {
		p := physics.NewParticle("p", physics.NodeSpec{Pos: vecmath.V(1, 1, 1), Pinned: true})
		p.Old.Set(0, 2, 0)
		p.Integrate(0.1, physics.DefaultParams())
		Expect(p.Pos).To(Equal(vecmath.V(1, 1, 1)))
	})
})
