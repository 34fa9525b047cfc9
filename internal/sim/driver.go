package sim

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/san-kum/marionette/internal/marionette"
	"github.com/san-kum/marionette/internal/physics"
	"github.com/san-kum/marionette/internal/vecmath"
)

type device struct {
	id    string
	slot  int
	m     *marionette.Marionette
	index map[*physics.Particle]int
}

// DeviceInfo describes a connected device.
type DeviceInfo struct {
	ID     string
	Slot   int
	Target vecmath.Vec3
}

// Driver advances every marionette with a fixed number of sub-steps per
// tick. It is not safe for concurrent use; a single goroutine must own it.
type Driver struct {
	cfg    Config
	tmpl   *physics.Template
	params physics.Params
	ground float64

	devices map[string]*device
	order   []string

	started bool
	last    time.Time
	tick    int
	time    float64
	frame   Frame

	metrics   []Metric
	observers []Observer
	log       *log.Logger
}

var _ Configurable = (*Driver)(nil)

// New creates a driver. A nil tmpl selects the default marionette with
// cfg.Marionette.Sections rope sections.
func New(cfg Config, tmpl *physics.Template) (*Driver, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if tmpl == nil {
		var err error
		if tmpl, err = marionette.DefaultTemplate(cfg.Marionette.Sections); err != nil {
			return nil, err
		}
	} else if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	// Every device instantiates tmpl, so a figure that cannot be driven
	// fails here instead of on the first DeviceAdded.
	if _, err := marionette.New(tmpl, vecmath.Vec3{}, vecmath.Vec3{}, cfg.Marionette); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	d := &Driver{
		cfg:     cfg,
		tmpl:    tmpl,
		params:  cfg.Params,
		ground:  cfg.GroundHeight,
		devices: make(map[string]*device),
		log:     log.Default(),
	}
	d.frame = Frame{Camera: d.Camera()}
	return d, nil
}

func (d *Driver) SetLogger(l *log.Logger) { d.log = l }

func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

// Handle applies one event. Motion for an unknown device is not an error.
func (d *Driver) Handle(ev Event) error {
	switch e := ev.(type) {
	case DeviceAdded:
		return d.addDevice(e.ID, e.Slot)
	case DeviceRemoved:
		d.removeDevice(e.ID)
	case Motion:
		if dev, ok := d.devices[e.ID]; ok {
			dev.m.Apply(e.Input)
		}
	case SetParam:
		return d.SetParam(e.Name, e.Value)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	return nil
}

// SlotX is the horizontal position of a slot: 0, -s, s, -2s, 2s, ...
func SlotX(slot int, spacing float64) float64 {
	p := math.Ceil(float64(slot) / 2)
	if slot%2 == 0 {
		return p * spacing
	}
	return -p * spacing
}

func (d *Driver) addDevice(id string, slot int) error {
	x := SlotX(slot, d.cfg.SlotSpacing)
	origin := vecmath.V(x, d.cfg.SpawnHeight, 0)
	target := vecmath.V(x, 0, 0)

	m, err := marionette.New(d.tmpl, origin, target, d.cfg.Marionette)
	if err != nil {
		return fmt.Errorf("device %s: %w", id, err)
	}
	index := make(map[*physics.Particle]int, len(m.Assembly.Particles))
	for i, p := range m.Assembly.Particles {
		index[p] = i
	}

	if _, exists := d.devices[id]; !exists {
		d.order = append(d.order, id)
		sort.Strings(d.order)
	}
	d.devices[id] = &device{id: id, slot: slot, m: m, index: index}
	d.log.Printf("device added: %s slot %d", id, slot)
	return nil
}

func (d *Driver) removeDevice(id string) {
	if _, ok := d.devices[id]; !ok {
		return
	}
	delete(d.devices, id)
	i := sort.SearchStrings(d.order, id)
	d.order = append(d.order[:i], d.order[i+1:]...)
	d.log.Printf("device removed: %s", id)
}

// Tick advances by the wall time elapsed since the previous Tick.
func (d *Driver) Tick(now time.Time) Frame {
	var raw, dt float64
	if !d.started {
		d.started = true
		raw, dt = d.cfg.FirstDt, d.cfg.FirstDt
	} else {
		raw = now.Sub(d.last).Seconds()
		if raw < 0 {
			raw = 0
		}
		dt = raw
		if dt > d.cfg.MaxDt {
			d.log.Printf("frame delta %.3fs clamped", dt)
			dt = d.cfg.ClampDt
		}
	}
	d.last = now
	return d.advance(raw, dt)
}

// Step advances by a fixed dt regardless of wall time.
func (d *Driver) Step(dt float64) Frame {
	return d.advance(dt, dt)
}

// advance runs the entrance clocks on elapsed and the physics on dt.
func (d *Driver) advance(elapsed, dt float64) Frame {
	for _, id := range d.order {
		d.devices[id].m.Advance(elapsed)
	}

	h := dt / float64(d.cfg.Substeps)
	for i := 0; i < d.cfg.Substeps; i++ {
		for _, id := range d.order {
			d.devices[id].m.Assembly.Step(h, d.params, d.ground)
		}
	}
	for _, id := range d.order {
		d.devices[id].m.Place()
	}

	d.tick++
	d.time += dt
	d.frame = d.buildFrame(dt, h)

	for _, m := range d.metrics {
		m.Observe(&d.frame)
	}
	for _, o := range d.observers {
		o.OnFrame(&d.frame)
	}
	return d.frame
}

// Camera centres the view on the spread of marionette targets and backs
// off as it widens.
func (d *Driver) Camera() vecmath.Vec3 {
	if len(d.devices) == 0 {
		return vecmath.V(0, -0.5, -3)
	}
	minx, maxx := math.Inf(1), math.Inf(-1)
	for _, dev := range d.devices {
		x := dev.m.Target.X
		minx = math.Min(minx, x)
		maxx = math.Max(maxx, x)
	}
	return vecmath.V((minx+maxx)/-2, -0.5, -3-(maxx-minx))
}

// buildFrame snapshots every body. Velocities are per second over the last
// sub-step of length h.
func (d *Driver) buildFrame(dt, h float64) Frame {
	f := Frame{
		Tick:   d.tick,
		Time:   d.time,
		Dt:     dt,
		Camera: d.Camera(),
		Bodies: make([]Body, 0, len(d.order)),
	}
	for _, id := range d.order {
		dev := d.devices[id]
		asm := dev.m.Assembly
		b := Body{
			ID:        id,
			Slot:      dev.slot,
			Particles: make([]ParticleView, len(asm.Particles)),
			Links:     make([]LinkView, len(asm.Constraints)),
		}
		if c, ok := asm.Particle(marionette.CenterNode); ok {
			b.Controller = c.Pos
		}
		for i, p := range asm.Particles {
			vel := p.Velocity()
			if h > 0 {
				vel.Mul(1 / h)
			}
			b.Particles[i] = ParticleView{
				Name:   p.Name,
				Pos:    p.Pos,
				Vel:    vel,
				Radius: p.Radius,
				Mass:   p.Mass,
				Color:  p.Color,
				Pinned: !p.Free,
			}
		}
		for i, c := range asm.Constraints {
			b.Links[i] = LinkView{
				A:      dev.index[c.A],
				B:      dev.index[c.B],
				Size:   c.Size,
				Rest:   c.Rest,
				Length: c.Length(),
			}
		}
		f.Bodies = append(f.Bodies, b)
	}
	return f
}

// Frame returns the snapshot from the last tick.
func (d *Driver) Frame() Frame { return d.frame }

func (d *Driver) Devices() []DeviceInfo {
	out := make([]DeviceInfo, 0, len(d.order))
	for _, id := range d.order {
		dev := d.devices[id]
		out = append(out, DeviceInfo{ID: id, Slot: dev.slot, Target: dev.m.Target})
	}
	return out
}

// Marionette returns the figure driven by device id.
func (d *Driver) Marionette(id string) (*marionette.Marionette, bool) {
	dev, ok := d.devices[id]
	if !ok {
		return nil, false
	}
	return dev.m, true
}

func (d *Driver) GetParams() map[string]float64 {
	return map[string]float64{
		"friction": d.params.Friction,
		"gravity":  d.params.Gravity,
		"ground":   d.ground,
	}
}

func (d *Driver) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s: value must be finite, got %f", name, value)
	}
	switch name {
	case "friction":
		if value < 0 || value >= 1 {
			return fmt.Errorf("friction must be in [0, 1), got %f", value)
		}
		d.params.Friction = value
	case "gravity":
		d.params.Gravity = value
	case "ground":
		d.ground = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

func (d *Driver) Friction() float64 { return d.params.Friction }

func (d *Driver) SetFriction(f float64) error { return d.SetParam("friction", f) }

// MetricValues collects the current value of every registered metric.
func (d *Driver) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(d.metrics))
	for _, m := range d.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (d *Driver) Config() Config { return d.cfg }
