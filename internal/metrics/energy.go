package metrics

import "github.com/san-kum/marionette/internal/sim"

// KineticEnergy sums 0.5*m*|v|^2 over free particles. Value is the mean
// over observed frames.
type KineticEnergy struct {
	name    string
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Sample(f *sim.Frame) float64 {
	var e float64
	for i := range f.Bodies {
		for _, p := range f.Bodies[i].Particles {
			if p.Pinned {
				continue
			}
			e += 0.5 * p.Mass * p.Vel.Dot(p.Vel)
		}
	}
	return e
}

func (k *KineticEnergy) Observe(f *sim.Frame) {
	k.total += k.Sample(f)
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

func (k *KineticEnergy) Reset() {
	k.total = 0
	k.samples = 0
}
