package physics

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/marionette/internal/vecmath"
	"gopkg.in/yaml.v3"
)

// NodeSpec declares one particle of a template.
type NodeSpec struct {
	Name   string       `yaml:"name"`
	Pos    vecmath.Vec3 `yaml:"pos"`
	Volume float64      `yaml:"volume"`
	Mass   float64      `yaml:"mass,omitempty"` // 0 means 1.0
	Color  [3]float64   `yaml:"color,flow"`
	Pinned bool         `yaml:"pinned,omitempty"`
}

// LinkSpec declares a distance constraint between two named nodes.
type LinkSpec struct {
	A         string  `yaml:"a"`
	B         string  `yaml:"b"`
	Size      float64 `yaml:"size,omitempty"`
	Stiffness float64 `yaml:"stiffness,omitempty"`
}

// Template is an ordered, declarative description of an Assembly. Node and
// link order is preserved into the built Assembly.
type Template struct {
	Nodes []NodeSpec `yaml:"nodes"`
	Links []LinkSpec `yaml:"links"`

	index map[string]int
}

func NewTemplate() *Template {
	return &Template{index: make(map[string]int)}
}

// LoadTemplate reads a YAML template and validates it.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t := NewTemplate()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	t.reindex()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) reindex() {
	t.index = make(map[string]int, len(t.Nodes))
	for i, n := range t.Nodes {
		if _, dup := t.index[n.Name]; !dup {
			t.index[n.Name] = i
		}
	}
}

// AddNode appends a node. Names must be unique and non-empty.
func (t *Template) AddNode(spec NodeSpec) error {
	if t.index == nil || len(t.index) != len(t.Nodes) {
		t.reindex()
	}
	if spec.Name == "" {
		return &TemplateError{Link: -1, Name: spec.Name, Wrapped: ErrEmptyName}
	}
	if _, dup := t.index[spec.Name]; dup {
		return &TemplateError{Link: -1, Name: spec.Name, Wrapped: ErrDuplicateParticle}
	}
	t.index[spec.Name] = len(t.Nodes)
	t.Nodes = append(t.Nodes, spec)
	return nil
}

// Link appends a link. Endpoints are resolved when the Assembly is built.
func (t *Template) Link(a, b string, size, stiffness float64) {
	t.Links = append(t.Links, LinkSpec{A: a, B: b, Size: size, Stiffness: stiffness})
}

// Node returns the spec registered under name.
func (t *Template) Node(name string) (NodeSpec, bool) {
	if t.index == nil || len(t.index) != len(t.Nodes) {
		t.reindex()
	}
	i, ok := t.index[name]
	if !ok {
		return NodeSpec{}, false
	}
	return t.Nodes[i], true
}

// Validate checks node names, masses and that every link endpoint exists.
func (t *Template) Validate() error {
	seen := make(map[string]struct{}, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.Name == "" {
			return &TemplateError{Link: -1, Name: n.Name, Wrapped: ErrEmptyName}
		}
		if _, dup := seen[n.Name]; dup {
			return &TemplateError{Link: -1, Name: n.Name, Wrapped: ErrDuplicateParticle}
		}
		if n.Mass < 0 || math.IsNaN(n.Mass) || math.IsInf(n.Mass, 0) {
			return &TemplateError{Link: -1, Name: n.Name, Wrapped: ErrInvalidMass}
		}
		seen[n.Name] = struct{}{}
	}
	for i, l := range t.Links {
		if _, ok := seen[l.A]; !ok {
			return &TemplateError{Link: i, Name: l.A, Wrapped: ErrUnknownParticle}
		}
		if _, ok := seen[l.B]; !ok {
			return &TemplateError{Link: i, Name: l.B, Wrapped: ErrUnknownParticle}
		}
	}
	return nil
}

// Clone returns a deep copy that can be extended independently.
func (t *Template) Clone() *Template {
	c := &Template{
		Nodes: append([]NodeSpec(nil), t.Nodes...),
		Links: append([]LinkSpec(nil), t.Links...),
	}
	c.reindex()
	return c
}

func (t *Template) Save(path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
