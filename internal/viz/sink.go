package viz

import (
	"sync"

	"github.com/san-kum/marionette/internal/sim"
)

// FrameSink is a sim.Observer that keeps only the newest frame so a slow
// viewer never stalls the stage loop.
type FrameSink struct {
	mu    sync.Mutex
	frame sim.Frame
	fresh bool
	seen  int
}

var _ sim.Observer = (*FrameSink)(nil)

func NewFrameSink() *FrameSink { return &FrameSink{} }

// OnFrame keeps a shallow copy of f. Frames are rebuilt every tick, so
// the copy's slices are not touched again by the driver.
func (s *FrameSink) OnFrame(f *sim.Frame) {
	s.mu.Lock()
	s.frame = *f
	s.fresh = true
	s.seen++
	s.mu.Unlock()
}

// Latest returns the newest frame and whether it arrived since the last
// call.
func (s *FrameSink) Latest() (sim.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := s.fresh
	s.fresh = false
	return s.frame, fresh
}

// Seen counts frames delivered so far.
func (s *FrameSink) Seen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}
