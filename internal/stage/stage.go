// Package stage runs the display loop: one goroutine owns the driver, ticks
// it at a fixed rate and applies events posted from connections.
package stage

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/san-kum/marionette/internal/sim"
)

var ErrStopped = errors.New("stage: stopped")

// Sink accepts driver events from a connection.
type Sink interface {
	Send(ctx context.Context, ev sim.Event) error
}

// call runs fn on the loop goroutine and closes done afterwards.
type call struct {
	fn   func(*sim.Driver)
	done chan struct{}
}

// Stage serialises all access to a Driver through Inbox.
type Stage struct {
	Inbox chan any

	d    *sim.Driver
	fps  int
	log  *log.Logger
	quit chan struct{}
}

var _ Sink = (*Stage)(nil)

func New(d *sim.Driver, fps int) *Stage {
	if fps <= 0 {
		fps = 30
	}
	return &Stage{
		Inbox: make(chan any, 256),
		d:     d,
		fps:   fps,
		log:   log.Default(),
		quit:  make(chan struct{}),
	}
}

func (s *Stage) SetLogger(l *log.Logger) { s.log = l }

// Run ticks the driver until ctx is done. It must be called once.
func (s *Stage) Run(ctx context.Context) error {
	defer close(s.quit)

	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-s.Inbox:
			s.handle(cmd)
		case now := <-ticker.C:
			s.d.Tick(now)
		}
	}
}

func (s *Stage) handle(cmd any) {
	switch c := cmd.(type) {
	case sim.Event:
		if err := s.d.Handle(c); err != nil {
			s.log.Printf("stage: %T: %v", c, err)
		}
	case call:
		c.fn(s.d)
		close(c.done)
	default:
		s.log.Printf("stage: unexpected command %T", cmd)
	}
}

func (s *Stage) post(ctx context.Context, cmd any) error {
	select {
	case <-s.quit:
		return ErrStopped
	default:
	}
	select {
	case s.Inbox <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return ErrStopped
	}
}

// Send queues ev for the next loop iteration.
func (s *Stage) Send(ctx context.Context, ev sim.Event) error {
	return s.post(ctx, ev)
}

// Do runs fn on the loop goroutine and waits for it to return.
func (s *Stage) Do(ctx context.Context, fn func(*sim.Driver)) error {
	c := call{fn: fn, done: make(chan struct{})}
	if err := s.post(ctx, c); err != nil {
		return err
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return ErrStopped
	}
}

func (s *Stage) Friction(ctx context.Context) (float64, error) {
	var f float64
	err := s.Do(ctx, func(d *sim.Driver) { f = d.Friction() })
	return f, err
}

func (s *Stage) SetFriction(ctx context.Context, f float64) error {
	return s.Send(ctx, sim.SetParam{Name: "friction", Value: f})
}

func (s *Stage) Devices(ctx context.Context) ([]sim.DeviceInfo, error) {
	var out []sim.DeviceInfo
	err := s.Do(ctx, func(d *sim.Driver) { out = d.Devices() })
	return out, err
}
