package metrics

import "github.com/san-kum/marionette/internal/sim"

// Series records every sampler's value per frame. It is a sim.Observer.
type Series struct {
	samplers []Sampler
	Times    []float64
	Values   map[string][]float64
}

func NewSeries(samplers ...Sampler) *Series {
	s := &Series{
		samplers: samplers,
		Values:   make(map[string][]float64, len(samplers)),
	}
	for _, sm := range samplers {
		s.Values[sm.Name()] = nil
	}
	return s
}

func (s *Series) OnFrame(f *sim.Frame) {
	s.Times = append(s.Times, f.Time)
	for _, sm := range s.samplers {
		s.Values[sm.Name()] = append(s.Values[sm.Name()], sm.Sample(f))
	}
}

// Names lists the recorded series in sampler order.
func (s *Series) Names() []string {
	names := make([]string, len(s.samplers))
	for i, sm := range s.samplers {
		names[i] = sm.Name()
	}
	return names
}

func (s *Series) Len() int { return len(s.Times) }

// Default returns the standard metric set used by headless runs.
func Default() []Sampler {
	return []Sampler{NewStrain(), NewKineticEnergy(), NewStability(100)}
}
