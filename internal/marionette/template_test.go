package marionette

import (
	"errors"
	"testing"

	"github.com/san-kum/marionette/internal/physics"
)

func TestDefaultTemplateShape(t *testing.T) {
	tmpl, err := DefaultTemplate(DefaultSections)
	if err != nil {
		t.Fatal(err)
	}

	if got := len(tmpl.Nodes); got != 204 {
		t.Errorf("expected 204 nodes, got %d", got)
	}
	if got := len(tmpl.Links); got != 700 {
		t.Errorf("expected 700 links, got %d", got)
	}
	if tmpl.Nodes[0].Name != "head" || tmpl.Links[0] != (physics.LinkSpec{A: "head", B: "s1", Size: 0.01, Stiffness: 0.5}) {
		t.Errorf("unexpected leading entries: %+v %+v", tmpl.Nodes[0], tmpl.Links[0])
	}

	for _, name := range append([]string{CenterNode}, "clefta", "crighta", "cleft", "cright", "cback", "cfront") {
		n, ok := tmpl.Node(name)
		if !ok || !n.Pinned {
			t.Errorf("expected pinned controller node %s", name)
		}
	}
	head, _ := tmpl.Node("head")
	if head.Pinned || head.Mass != 105 || head.Volume != 0.2 {
		t.Errorf("unexpected head: %+v", head)
	}
}

func TestRopeLinks(t *testing.T) {
	tmpl, err := DefaultTemplate(DefaultSections)
	if err != nil {
		t.Fatal(err)
	}

	has := func(a, b string) bool {
		for _, l := range tmpl.Links {
			if l.A == a && l.B == b {
				return true
			}
		}
		return false
	}
	for _, r := range ropeTargets {
		last := RopeNode(r.from, DefaultSections-1)
		if !has(last, r.to) {
			t.Errorf("rope %s: expected %s -> %s", r.from, last, r.to)
		}
		if !has(r.from, RopeNode(r.from, 0)) {
			t.Errorf("rope %s: missing anchor link", r.from)
		}
		if has(last, RopeNode(r.from, DefaultSections)) {
			t.Errorf("rope %s: dangling link past the last section", r.from)
		}
		n, _ := tmpl.Node(RopeNode(r.from, 3))
		if n.Pinned || n.Volume != 0 || n.Mass != 1 {
			t.Errorf("unexpected rope node: %+v", n)
		}
	}
}

func TestAddRopeBendLinks(t *testing.T) {
	tmpl := Body()
	if err := AddRope(tmpl, 6, "r", "head", "lankle"); err != nil {
		t.Fatal(err)
	}

	var chain, bend int
	for _, l := range tmpl.Links[len(bones):] {
		if l.Size == 0 {
			bend++
		} else {
			chain++
		}
	}
	// 6 chain + anchor, bends: 4 to i+2, 3 to i+3, 2 to i+4
	if chain != 7 || bend != 9 {
		t.Errorf("expected 7 chain and 9 bend links, got %d and %d", chain, bend)
	}

	head, _ := tmpl.Node("head")
	ankle, _ := tmpl.Node("lankle")
	r0, _ := tmpl.Node("r0")
	want := head.Pos.Y + (ankle.Pos.Y-head.Pos.Y)/8
	if diff := r0.Pos.Y - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("expected r0.y %f, got %f", want, r0.Pos.Y)
	}
}

func TestAddRopeErrors(t *testing.T) {
	tmpl := Body()
	if err := AddRope(tmpl, 0, "r", "head", "s1"); !errors.Is(err, ErrInvalidSections) {
		t.Errorf("expected ErrInvalidSections, got %v", err)
	}
	if err := AddRope(tmpl, 3, "r", "nowhere", "s1"); !errors.Is(err, physics.ErrUnknownParticle) {
		t.Errorf("expected ErrUnknownParticle, got %v", err)
	}
}

func TestEasingEndpoints(t *testing.T) {
	for _, name := range EasingNames() {
		f, err := Easing(name)
		if err != nil {
			t.Fatal(err)
		}
		if v := f(0); v < -1e-12 || v > 1e-12 {
			t.Errorf("%s(0) = %f", name, v)
		}
		if v := f(1); v < 1-1e-12 || v > 1+1e-12 {
			t.Errorf("%s(1) = %f", name, v)
		}
	}
	if v := InOutCubic(0.5); v != 0.5 {
		t.Errorf("expected inOutCubic(0.5) = 0.5, got %f", v)
	}
	if _, err := Easing("bounce"); !errors.Is(err, ErrUnknownEasing) {
		t.Errorf("expected ErrUnknownEasing, got %v", err)
	}
}
