package marionette

import (
	"fmt"
	"strconv"

	"github.com/san-kum/marionette/internal/physics"
	"github.com/san-kum/marionette/internal/vecmath"
)

const (
	DefaultSections = 30

	bodyMass       = 105.0
	controllerMass = 150.0
	ropeMass       = 1.0
)

var (
	warm = [3]float64{1.5, 1.2, 0.8}
	cool = [3]float64{0.8, 1.2, 1.5}
)

// ControllerCenter is where the controller sits relative to the figure.
var ControllerCenter = vecmath.V(0, 1.5, 0)

// ControllerVector is one arm of the controller cross, relative to its
// center.
type ControllerVector struct {
	Name   string
	Offset vecmath.Vec3
}

var ControllerVectors = []ControllerVector{
	{"clefta", vecmath.V(-1, 0, 0)},
	{"crighta", vecmath.V(1, 0, 0)},
	{"cleft", vecmath.V(-1, 0, 0.5)},
	{"cright", vecmath.V(1, 0, 0.5)},
	{"cback", vecmath.V(0, 0, -1)},
	{"cfront", vecmath.V(0, 0, 1)},
}

// CenterNode is the pinned node at the controller center.
const CenterNode = "ccenter"

// Ropes lists the controller nodes that carry a rope, in update order.
var Ropes = []string{"ccenter", "cleft", "clefta", "cright", "crighta", "cback"}

// ropeTargets maps each rope's controller to the body node it holds, in
// build order.
var ropeTargets = []struct{ from, to string }{
	{"ccenter", "head"},
	{"cleft", "lwrist"},
	{"cright", "rwrist"},
	{"clefta", "lknee"},
	{"crighta", "rknee"},
	{"cback", "s4"},
}

func RopeName(controller string) string {
	return "rope" + controller
}

// RopeNode names section i of the rope hanging from controller.
func RopeNode(controller string, i int) string {
	return RopeName(controller) + strconv.Itoa(i)
}

type bodyNode struct {
	name    string
	x, y, z float64
	volume  float64
	color   [3]float64
}

var bodyNodes = []bodyNode{
	{"head", 0, 0, 0, 0.2, warm},
	{"s1", 0, -0.08, 0, 0.03, warm},
	{"s2", 0, -0.12, -0.05, 0.03, warm},
	{"s3", 0, -0.25, 0, 0.03, cool},
	{"s4", 0, -0.36, 0, 0.03, warm},
	{"lshoulder", 0.13, -0.09, 0, 0.03, cool},
	{"lelbow", 0.13, -0.3, 0, 0.03, cool},
	{"lwrist", 0.13, 0, 0, 0.03, cool},
	{"rshoulder", -0.13, -0.09, 0, 0.03, cool},
	{"relbow", -0.13, -0.3, 0, 0.03, cool},
	{"rwrist", -0.13, 0, 0, 0.03, cool},
	{"lhip", 0.06, -0.42, 0, 0.03, cool},
	{"lknee", 0.06, -0.71, 0, 0.03, cool},
	{"lankle", 0.06, -0.9, 0, 0.03, cool},
	{"rhip", -0.06, -0.42, 0, 0.03, cool},
	{"rknee", -0.06, -0.71, 0, 0.03, cool},
	{"rankle", -0.06, -0.9, 0, 0.03, cool},
}

var bones = [][2]string{
	{"head", "s1"},
	{"s1", "s2"},
	{"s2", "s3"},
	{"s3", "s1"},
	{"s3", "s4"},
	{"s1", "lshoulder"},
	{"s2", "lshoulder"},
	{"s3", "lshoulder"},
	{"lshoulder", "lelbow"},
	{"lelbow", "lwrist"},
	{"s1", "rshoulder"},
	{"s2", "rshoulder"},
	{"s3", "rshoulder"},
	{"rshoulder", "relbow"},
	{"relbow", "rwrist"},
	{"s4", "lhip"},
	{"lhip", "lknee"},
	{"lknee", "lankle"},
	{"s4", "rhip"},
	{"lhip", "rhip"},
	{"rhip", "rknee"},
	{"rknee", "rankle"},
}

// Body returns the figure without controller or ropes. The head sits at
// the origin.
func Body() *physics.Template {
	t := physics.NewTemplate()
	for _, n := range bodyNodes {
		// names are unique literals
		_ = t.AddNode(physics.NodeSpec{
			Name:   n.name,
			Pos:    vecmath.V(n.x, n.y, n.z),
			Volume: n.volume,
			Mass:   bodyMass,
			Color:  n.color,
		})
	}
	for _, b := range bones {
		t.Link(b[0], b[1], 0.01, 0.5)
	}
	return t
}

// AddController adds the pinned controller cross at center.
func AddController(t *physics.Template, center vecmath.Vec3, vectors []ControllerVector) error {
	err := t.AddNode(physics.NodeSpec{
		Name:   CenterNode,
		Pos:    center,
		Volume: 0.1,
		Mass:   1,
		Color:  warm,
		Pinned: true,
	})
	if err != nil {
		return err
	}
	for _, v := range vectors {
		pos := center
		pos.Add(v.Offset)
		err := t.AddNode(physics.NodeSpec{
			Name:   v.Name,
			Pos:    pos,
			Volume: 0.1,
			Mass:   controllerMass,
			Color:  warm,
			Pinned: true,
		})
		if err != nil {
			return err
		}
	}
	for _, v := range controllerLinkOrder(vectors) {
		t.Link(CenterNode, v, 0.02, 1)
	}
	return nil
}

// controllerLinkOrder puts the string-carrying arms first.
func controllerLinkOrder(vectors []ControllerVector) []string {
	order := []string{"cleft", "cright", "clefta", "crighta", "cback", "cfront"}
	have := make(map[string]bool, len(vectors))
	for _, v := range vectors {
		have[v.Name] = true
	}
	out := make([]string, 0, len(vectors))
	for _, n := range order {
		if have[n] {
			out = append(out, n)
			delete(have, n)
		}
	}
	for _, v := range vectors {
		if have[v.Name] {
			out = append(out, v.Name)
		}
	}
	return out
}

// AddRope hangs a chain of sections massless-volume nodes between from and
// to. Each node is linked to the next and, with invisible links, to the
// three after that so the rope resists bending.
func AddRope(t *physics.Template, sections int, name, from, to string) error {
	if sections < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSections, sections)
	}
	src, ok := t.Node(from)
	if !ok {
		return &physics.TemplateError{Link: -1, Name: from, Wrapped: physics.ErrUnknownParticle}
	}
	dst, ok := t.Node(to)
	if !ok {
		return &physics.TemplateError{Link: -1, Name: to, Wrapped: physics.ErrUnknownParticle}
	}

	node := func(i int) string { return name + strconv.Itoa(i) }
	for i := 0; i < sections; i++ {
		p := float64(i+1) / float64(sections+2)
		err := t.AddNode(physics.NodeSpec{
			Name: node(i),
			Pos: vecmath.V(
				lerp(src.Pos.X, dst.Pos.X, p),
				lerp(src.Pos.Y, dst.Pos.Y, p),
				lerp(src.Pos.Z, dst.Pos.Z, p),
			),
			Mass:  ropeMass,
			Color: cool,
		})
		if err != nil {
			return err
		}
		t.Link(node(i), node(i+1), 0.001, 0.5)
		for k := 2; k <= 4; k++ {
			if i+k < sections {
				t.Link(node(i), node(i+k), 0, 0.5)
			}
		}
	}
	t.Links[len(t.Links)-1].B = to
	t.Link(from, node(0), 0.001, 0.5)
	return nil
}

// DefaultTemplate builds the full marionette: body, controller and six
// ropes of the given number of sections.
func DefaultTemplate(sections int) (*physics.Template, error) {
	t := Body()
	if err := AddController(t, ControllerCenter, ControllerVectors); err != nil {
		return nil, err
	}
	for _, r := range ropeTargets {
		if err := AddRope(t, sections, RopeName(r.from), r.from, r.to); err != nil {
			return nil, fmt.Errorf("rope %s: %w", r.from, err)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func lerp(a, b, p float64) float64 {
	return (b-a)*p + a
}
