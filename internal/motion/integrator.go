// Package motion tracks the inferred pose of a remote sensor device as a
// single damped point mass.
package motion

import "github.com/san-kum/marionette/internal/vecmath"

// Calibration holds the two tunables of an Integrator.
type Calibration struct {
	Damping          float64 `yaml:"damping"`
	CenterAttraction float64 `yaml:"center_attraction"`
}

var (
	// DisplayCalibration is used until the device recalibrates.
	DisplayCalibration = Calibration{Damping: 0.8, CenterAttraction: 0.003}

	// RecalibratedCalibration is used after a drift recalibration gesture.
	RecalibratedCalibration = Calibration{Damping: 0.99, CenterAttraction: 0.0001}
)

// Integrator is a damped point mass pulled toward the origin. Acceleration
// samples are impulses: they are added to the velocity without a timestep.
type Integrator struct {
	Pos vecmath.Vec3
	Vel vecmath.Vec3
	Rot vecmath.Vec3

	Damping          float64
	CenterAttraction float64
}

func NewIntegrator(c Calibration) *Integrator {
	return &Integrator{Damping: c.Damping, CenterAttraction: c.CenterAttraction}
}

func (m *Integrator) Accelerate(a vecmath.Vec3) {
	m.Vel.Add(a)
}

func (m *Integrator) Move(d vecmath.Vec3) {
	m.Pos.Add(d)
}

// SetRotation overwrites the absolute orientation.
func (m *Integrator) SetRotation(x, y, z float64) {
	m.Rot.Set(x, y, z)
}

// Update damps the velocity, applies the restoring pull and moves.
func (m *Integrator) Update() {
	m.Vel.Mul(m.Damping)
	m.Vel.X -= m.Pos.X * m.CenterAttraction
	m.Vel.Y -= m.Pos.Y * m.CenterAttraction
	m.Vel.Z -= m.Pos.Z * m.CenterAttraction
	m.Move(m.Vel)
}

func (m *Integrator) Reset() {
	m.Pos = vecmath.Vec3{}
	m.Vel = vecmath.Vec3{}
	m.Rot = vecmath.Vec3{}
}

func (m *Integrator) Position() vecmath.Vec3 {
	return m.Pos
}

// Calibrate swaps the tunables without touching the state.
func (m *Integrator) Calibrate(c Calibration) {
	m.Damping = c.Damping
	m.CenterAttraction = c.CenterAttraction
}

// Recalibrate applies c and resets the state.
func (m *Integrator) Recalibrate(c Calibration) {
	m.Calibrate(c)
	m.Reset()
}

func (m *Integrator) Calibration() Calibration {
	return Calibration{Damping: m.Damping, CenterAttraction: m.CenterAttraction}
}
