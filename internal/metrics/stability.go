package metrics

import (
	"math"

	"github.com/san-kum/marionette/internal/sim"
)

// Stability is the fraction of frames in which every particle is finite
// and within threshold of the origin on each axis.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Sample(f *sim.Frame) float64 {
	for i := range f.Bodies {
		for _, p := range f.Bodies[i].Particles {
			if !p.Pos.IsFinite() ||
				math.Abs(p.Pos.X) > s.threshold ||
				math.Abs(p.Pos.Y) > s.threshold ||
				math.Abs(p.Pos.Z) > s.threshold {
				return 0
			}
		}
	}
	return 1
}

func (s *Stability) Observe(f *sim.Frame) {
	s.samples++
	if s.Sample(f) == 0 {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
