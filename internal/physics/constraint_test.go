package physics

import (
	"math"
	"testing"

	"github.com/san-kum/marionette/internal/vecmath"
)

func pair(t *testing.T, pinnedA bool) *Assembly {
	t.Helper()
	tmpl := NewTemplate()
	if err := tmpl.AddNode(NodeSpec{Name: "a", Pos: vecmath.V(0, 0, 0), Pinned: pinnedA}); err != nil {
		t.Fatal(err)
	}
	if err := tmpl.AddNode(NodeSpec{Name: "b", Pos: vecmath.V(1, 0, 0)}); err != nil {
		t.Fatal(err)
	}
	tmpl.Link("a", "b", 0.01, 0.5)
	asm, err := NewAssembly(tmpl, vecmath.Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	return asm
}

func TestConstraintSolveEqualMasses(t *testing.T) {
	asm := pair(t, false)
	c := asm.Constraints[0]
	if math.Abs(c.Rest-1) > 1e-12 {
		t.Fatalf("expected rest 1, got %f", c.Rest)
	}

	b, _ := asm.Particle("b")
	b.Pos.Set(2, 0, 0)
	c.Solve()

	a, _ := asm.Particle("a")
	if math.Abs(a.Pos.X-0.25) > 1e-6 {
		t.Errorf("expected a.x 0.25, got %f", a.Pos.X)
	}
	if math.Abs(b.Pos.X-1.75) > 1e-6 {
		t.Errorf("expected b.x 1.75, got %f", b.Pos.X)
	}
	if a.Pos.Y != 0 || a.Pos.Z != 0 || b.Pos.Y != 0 || b.Pos.Z != 0 {
		t.Errorf("solve left the x axis: a=%v b=%v", a.Pos, b.Pos)
	}
}

func TestConstraintPinnedRatio(t *testing.T) {
	asm := pair(t, true)
	a, _ := asm.Particle("a")
	b, _ := asm.Particle("b")
	b.Pos.Set(2, 0, 0)

	asm.Constraints[0].Solve()

	da := math.Abs(a.Pos.X - 0)
	db := math.Abs(b.Pos.X - 2)
	if db == 0 {
		t.Fatal("free particle did not move")
	}
	if ratio := da / db; ratio > 1.0/PinnedMassFactor*(1+1e-9) {
		t.Errorf("pinned particle moved too much: ratio %g", ratio)
	}
}

func TestConstraintCoincidentSkipped(t *testing.T) {
	asm := pair(t, false)
	a, _ := asm.Particle("a")
	b, _ := asm.Particle("b")
	b.Pos = a.Pos

	asm.Constraints[0].Solve()

	if !a.Pos.IsFinite() || !b.Pos.IsFinite() {
		t.Fatalf("coincident endpoints produced non-finite positions: %v %v", a.Pos, b.Pos)
	}
	if a.Pos != b.Pos {
		t.Errorf("expected no correction, got a=%v b=%v", a.Pos, b.Pos)
	}
}

func TestConstraintConvergence(t *testing.T) {
	tmpl := NewTemplate()
	for i, name := range []string{"a", "b", "c"} {
		if err := tmpl.AddNode(NodeSpec{Name: name, Pos: vecmath.V(float64(i), 0, 0)}); err != nil {
			t.Fatal(err)
		}
	}
	tmpl.Link("a", "b", 0.01, 0.5)
	tmpl.Link("b", "c", 0.01, 0.5)
	asm, err := NewAssembly(tmpl, vecmath.Vec3{})
	if err != nil {
		t.Fatal(err)
	}

	b, _ := asm.Particle("b")
	b.Pos.X += 0.3
	c, _ := asm.Particle("c")
	c.Pos.X -= 0.1

	prev := asm.SquaredError()
	if prev == 0 {
		t.Fatal("perturbation produced no error")
	}
	for pass := 0; pass < 50; pass++ {
		asm.Solve()
		cur := asm.SquaredError()
		if cur > prev {
			t.Fatalf("pass %d: error grew from %g to %g", pass, prev, cur)
		}
		prev = cur
	}
	if prev > 1e-12 {
		t.Errorf("expected convergence, residual %g", prev)
	}
}

func TestConstraintConvergenceTetrahedron(t *testing.T) {
	tmpl := NewTemplate()
	pts := map[string]vecmath.Vec3{
		"p0": vecmath.V(1, 1, 1),
		"p1": vecmath.V(1, -1, -1),
		"p2": vecmath.V(-1, 1, -1),
		"p3": vecmath.V(-1, -1, 1),
	}
	for _, name := range []string{"p0", "p1", "p2", "p3"} {
		if err := tmpl.AddNode(NodeSpec{Name: name, Pos: pts[name]}); err != nil {
			t.Fatal(err)
		}
	}
	names := []string{"p0", "p1", "p2", "p3"}
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			tmpl.Link(names[i], names[j], 0.01, 0.5)
		}
	}
	asm, err := NewAssembly(tmpl, vecmath.Vec3{})
	if err != nil {
		t.Fatal(err)
	}

	p, _ := asm.Particle("p2")
	p.Pos.Add(vecmath.V(0.05, -0.03, 0.02))

	initial := asm.SquaredError()
	for pass := 0; pass < 50; pass++ {
		asm.Solve()
	}
	if final := asm.SquaredError(); final > initial*1e-2 {
		t.Errorf("expected error to shrink, initial %g final %g", initial, final)
	}
}
