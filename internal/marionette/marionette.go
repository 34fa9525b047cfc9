// Package marionette builds the string puppet figure and steers its
// controller from a remote device's motion.
package marionette

import (
	"fmt"
	"math"

	"github.com/san-kum/marionette/internal/motion"
	"github.com/san-kum/marionette/internal/physics"
	"github.com/san-kum/marionette/internal/vecmath"
)

// Options tune how a Marionette follows its device.
type Options struct {
	Sections        int
	EntranceSeconds float64
	Easing          string
	// MotionScale divides the integrated device position before it is
	// added to the controller center.
	MotionScale  float64
	Calibration  motion.Calibration
	Recalibrated motion.Calibration
}

func DefaultOptions() Options {
	return Options{
		Sections:        DefaultSections,
		EntranceSeconds: 3,
		Easing:          "inOutCubic",
		MotionScale:     100,
		Calibration:     motion.DisplayCalibration,
		Recalibrated:    motion.RecalibratedCalibration,
	}
}

// Input is one motion sample from the device. Rot is in degrees; Pulls maps
// a rope's controller name to the pull vector applied to it.
type Input struct {
	Acc         vecmath.Vec3
	Rot         vecmath.Vec3
	Pulls       map[string]vecmath.Vec3
	Recalibrate bool
}

// Marionette pairs an Assembly with the motion integrator that drives its
// controller.
type Marionette struct {
	Assembly *physics.Assembly
	Motion   *motion.Integrator
	Origin   vecmath.Vec3
	Target   vecmath.Vec3
	LifeTime float64

	opts   Options
	ease   EasingFunc
	center *physics.Particle
	arms   []arm
	ropes  map[string][]*physics.Particle
	pulls  map[string]vecmath.Vec3
}

type arm struct {
	p      *physics.Particle
	offset vecmath.Vec3
}

// New instantiates tmpl at origin. The figure eases toward target over
// opts.EntranceSeconds.
func New(tmpl *physics.Template, origin, target vecmath.Vec3, opts Options) (*Marionette, error) {
	ease, err := Easing(opts.Easing)
	if err != nil {
		return nil, err
	}
	if opts.Sections < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSections, opts.Sections)
	}
	if opts.MotionScale == 0 {
		opts.MotionScale = 1
	}

	asm, err := physics.NewAssembly(tmpl, origin)
	if err != nil {
		return nil, err
	}

	m := &Marionette{
		Assembly: asm,
		Motion:   motion.NewIntegrator(opts.Calibration),
		Origin:   origin,
		Target:   target,
		opts:     opts,
		ease:     ease,
		ropes:    make(map[string][]*physics.Particle, len(Ropes)),
	}

	lookup := func(name string) (*physics.Particle, error) {
		p, ok := asm.Particle(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingNode, name)
		}
		return p, nil
	}

	if m.center, err = lookup(CenterNode); err != nil {
		return nil, err
	}
	for _, v := range ControllerVectors {
		p, err := lookup(v.Name)
		if err != nil {
			return nil, err
		}
		m.arms = append(m.arms, arm{p: p, offset: v.Offset})
	}
	for _, r := range Ropes {
		nodes := make([]*physics.Particle, opts.Sections)
		for i := range nodes {
			if nodes[i], err = lookup(RopeNode(r, i)); err != nil {
				return nil, err
			}
		}
		m.ropes[r] = nodes
	}
	return m, nil
}

// Advance adds elapsed wall time to the entrance clock.
func (m *Marionette) Advance(dt float64) {
	m.LifeTime += dt
}

// Apply feeds one motion sample into the integrator and remembers its pulls
// for the next Place.
func (m *Marionette) Apply(in Input) {
	if in.Recalibrate {
		m.Motion.Recalibrate(m.opts.Recalibrated)
	}
	m.Motion.Accelerate(in.Acc)
	m.Motion.SetRotation(in.Rot.X, in.Rot.Z, in.Rot.Y)
	m.Motion.Update()

	m.pulls = make(map[string]vecmath.Vec3, len(in.Pulls))
	for k, v := range in.Pulls {
		m.pulls[k] = v
	}
}

// Progress is the eased entrance progress in [0, 1].
func (m *Marionette) Progress() float64 {
	if m.opts.EntranceSeconds <= 0 {
		return 1
	}
	phase := m.LifeTime / m.opts.EntranceSeconds
	if phase > 1 {
		phase = 1
	}
	if phase < 0 {
		phase = 0
	}
	return m.ease(phase)
}

// ControllerPosition is where the controller center should be for the
// current entrance progress and device position.
func (m *Marionette) ControllerPosition() vecmath.Vec3 {
	p := m.Progress()
	pos := m.Motion.Position()
	s := m.opts.MotionScale
	return vecmath.V(
		m.Origin.X*(1-p)+m.Target.X*p+ControllerCenter.X+pos.X/s,
		m.Origin.Y*(1-p)+m.Target.Y*p+ControllerCenter.Y+pos.Z/s,
		m.Origin.Z*(1-p)+m.Target.Z*p+ControllerCenter.Z+pos.Y/s,
	)
}

// Place moves the controller and re-grabs the ropes named by the last
// Apply. Ropes without a pull are released.
func (m *Marionette) Place() {
	r := m.Motion.Rot
	m.positionController(m.ControllerPosition(), r)
	for _, name := range Ropes {
		m.FreeRope(name)
		if v, ok := m.pulls[name]; ok {
			m.GrabRope(name, v, r)
		}
	}
}

func (m *Marionette) positionController(pos, rot vecmath.Vec3) {
	mat := vecmath.NewMat4().
		Translate(pos.X, pos.Y, pos.Z).
		RotateY(-rot.X).
		RotateZ(rot.Y).
		RotateX(rot.Z)
	for _, a := range m.arms {
		a.p.Old = a.p.Pos
		a.p.Pos.TransformMat4(a.offset, mat)
	}
	m.center.Old = m.center.Pos
	m.center.Pos = pos
}

// FreeRope releases every node of the rope hanging from controller.
func (m *Marionette) FreeRope(controller string) {
	for _, n := range m.ropes[controller] {
		n.Free = true
	}
}

// GrabRope pins one node of a rope so the rope is pulled along v, expressed
// in the controller's frame. The node is the first one whose distance along
// the rope reaches |v|. The further down the rope it is, the flatter the
// pull angle.
func (m *Marionette) GrabRope(controller string, v, rot vecmath.Vec3) {
	nodes, ok := m.ropes[controller]
	if !ok || v.Length() == 0 {
		return
	}
	ctrl, _ := m.Assembly.Particle(controller)

	mat := vecmath.NewMat4().RotateY(-rot.X).RotateZ(rot.Y).RotateX(rot.Z)
	v.TransformMat4(v, mat)

	d := v.Length()
	var l float64
	n, ni := ctrl, 0
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].Free = true
		if l < d {
			l += n.Pos.Distance(nodes[i].Pos)
			n = nodes[i]
			ni = i
		}
	}
	if l == 0 || n == ctrl {
		return
	}

	v.Mul(d / l)
	sections := float64(m.opts.Sections)
	a := (90 - float64(ni)*60/sections) * math.Pi / 180
	v.Mul(math.Cos(a))
	v.Y = -math.Sin(a) * l

	target := ctrl.Pos
	n.Place(*target.Add(v))
}

// Pulls returns the pulls applied at the last Place.
func (m *Marionette) Pulls() map[string]vecmath.Vec3 {
	return m.pulls
}

func (m *Marionette) Options() Options {
	return m.opts
}
