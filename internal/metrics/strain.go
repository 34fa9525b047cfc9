package metrics

import (
	"math"

	"github.com/san-kum/marionette/internal/sim"
)

// Sampler reports an instantaneous value for one frame.
type Sampler interface {
	Name() string
	Sample(f *sim.Frame) float64
}

// Strain is the RMS relative deviation of visible links from their rest
// length. Logical links (size 0) are skipped. Value is the mean over frames.
type Strain struct {
	name    string
	sum     float64
	peak    float64
	samples int
}

func NewStrain() *Strain {
	return &Strain{name: "strain"}
}

func (s *Strain) Name() string { return s.name }

func (s *Strain) Sample(f *sim.Frame) float64 {
	var sum float64
	var n int
	for i := range f.Bodies {
		for _, l := range f.Bodies[i].Links {
			if l.Size == 0 || l.Rest == 0 {
				continue
			}
			e := (l.Length - l.Rest) / l.Rest
			sum += e * e
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

func (s *Strain) Observe(f *sim.Frame) {
	v := s.Sample(f)
	s.sum += v
	s.peak = math.Max(s.peak, v)
	s.samples++
}

func (s *Strain) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

// Peak is the largest per-frame strain seen since Reset.
func (s *Strain) Peak() float64 { return s.peak }

func (s *Strain) Reset() {
	s.sum = 0
	s.peak = 0
	s.samples = 0
}
