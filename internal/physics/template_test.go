package physics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/marionette/internal/vecmath"
)

func TestTemplateUnknownLink(t *testing.T) {
	tmpl := NewTemplate()
	if err := tmpl.AddNode(NodeSpec{Name: "a"}); err != nil {
		t.Fatal(err)
	}
	tmpl.Link("a", "ghost", 0.01, 0.5)

	_, err := NewAssembly(tmpl, vecmath.Vec3{})
	if !errors.Is(err, ErrUnknownParticle) {
		t.Fatalf("expected ErrUnknownParticle, got %v", err)
	}

	var te *TemplateError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TemplateError, got %T", err)
	}
	if te.Link != 0 || te.Name != "ghost" {
		t.Errorf("unexpected error context: %+v", te)
	}
}

func TestTemplateAddNodeErrors(t *testing.T) {
	tmpl := NewTemplate()
	if err := tmpl.AddNode(NodeSpec{Name: "a"}); err != nil {
		t.Fatal(err)
	}

	if err := tmpl.AddNode(NodeSpec{Name: "a"}); !errors.Is(err, ErrDuplicateParticle) {
		t.Errorf("expected ErrDuplicateParticle, got %v", err)
	}
	if err := tmpl.AddNode(NodeSpec{}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
	if len(tmpl.Nodes) != 1 {
		t.Errorf("expected 1 node, got %d", len(tmpl.Nodes))
	}
}

func TestTemplateInvalidMass(t *testing.T) {
	tmpl := &Template{Nodes: []NodeSpec{{Name: "a", Mass: -1}}}
	if err := tmpl.Validate(); !errors.Is(err, ErrInvalidMass) {
		t.Errorf("expected ErrInvalidMass, got %v", err)
	}
}

func TestAssemblyOffsetAndOrder(t *testing.T) {
	tmpl := NewTemplate()
	for i, name := range []string{"z", "a", "m"} {
		if err := tmpl.AddNode(NodeSpec{Name: name, Pos: vecmath.V(float64(i), 0, 0)}); err != nil {
			t.Fatal(err)
		}
	}
	tmpl.Link("m", "z", 0, 0)
	tmpl.Link("z", "a", 0.01, 1)

	asm, err := NewAssembly(tmpl, vecmath.V(10, 4, -2))
	if err != nil {
		t.Fatal(err)
	}

	for i, want := range []string{"z", "a", "m"} {
		if asm.Particles[i].Name != want {
			t.Errorf("particle %d: expected %s, got %s", i, want, asm.Particles[i].Name)
		}
	}
	m, _ := asm.Particle("m")
	if m.Pos != vecmath.V(12, 4, -2) || m.Old != m.Pos {
		t.Errorf("expected offset position, got pos=%v old=%v", m.Pos, m.Old)
	}
	if asm.Constraints[0].A != m || asm.Constraints[0].Size != 0 {
		t.Errorf("constraint order not preserved")
	}
	if got := asm.Constraints[0].Rest; got != 2 {
		t.Errorf("expected rest 2, got %f", got)
	}
	if _, ok := asm.Particle("missing"); ok {
		t.Error("expected lookup of unknown name to fail")
	}
}

func TestLoadTemplate(t *testing.T) {
	doc := `nodes:
  - name: a
    pos: {x: 0, y: 0, z: 0}
    volume: 0.03
    color: [1.5, 1.2, 0.8]
  - name: b
    pos: {x: 1, y: 0.5, z: 0}
    mass: 105
    pinned: true
links:
  - {a: a, b: b, size: 0.01, stiffness: 0.5}
`
	path := filepath.Join(t.TempDir(), "tmpl.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	tmpl, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	b, ok := tmpl.Node("b")
	if !ok {
		t.Fatal("node b missing")
	}
	if b.Pos != vecmath.V(1, 0.5, 0) || b.Mass != 105 || !b.Pinned {
		t.Errorf("unexpected node b: %+v", b)
	}
	if len(tmpl.Links) != 1 || tmpl.Links[0].Stiffness != 0.5 {
		t.Errorf("unexpected links: %+v", tmpl.Links)
	}

	out := filepath.Join(t.TempDir(), "out.yaml")
	if err := tmpl.Save(out); err != nil {
		t.Fatal(err)
	}
	again, err := LoadTemplate(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Nodes) != 2 || again.Nodes[0].Color != [3]float64{1.5, 1.2, 0.8} {
		t.Errorf("reload mismatch: %+v", again.Nodes)
	}
}

func TestLoadTemplateBadLink(t *testing.T) {
	doc := "nodes:\n  - name: a\nlinks:\n  - {a: a, b: nope}\n"
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTemplate(path); !errors.Is(err, ErrUnknownParticle) {
		t.Errorf("expected ErrUnknownParticle, got %v", err)
	}
}
