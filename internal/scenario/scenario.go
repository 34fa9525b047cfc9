// Package scenario scripts device sessions so a stage can be replayed
// without phones: headless at a fixed step or in real time.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/marionette/internal/marionette"
	"github.com/san-kum/marionette/internal/sim"
	"github.com/san-kum/marionette/internal/vecmath"
)

var ErrInvalid = errors.New("scenario: invalid")

// Scenario is a scripted sequence of device sessions.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	Duration    float64            `yaml:"duration"`
	Dt          float64            `yaml:"dt"`
	Params      map[string]float64 `yaml:"params,omitempty"`
	Devices     []Device           `yaml:"devices"`
}

// Device joins at Join seconds and, when Leave is after Join, disconnects
// at Leave. Key times are relative to Join.
type Device struct {
	ID    string  `yaml:"id"`
	Slot  int     `yaml:"slot"`
	Join  float64 `yaml:"join"`
	Leave float64 `yaml:"leave,omitempty"`
	Keys  []Key   `yaml:"keys"`
}

// Key is one motion sample.
type Key struct {
	At          float64                 `yaml:"at"`
	Acc         vecmath.Vec3            `yaml:"acc"`
	Rot         vecmath.Vec3            `yaml:"rot"`
	Pulls       map[string]vecmath.Vec3 `yaml:"pulls,omitempty"`
	Recalibrate bool                    `yaml:"recalibrate,omitempty"`
}

// Timed is an event scheduled at an absolute scenario time.
type Timed struct {
	At    float64
	Event sim.Event
}

// Result summarises a headless run.
type Result struct {
	Frames int
	Time   float64
	Last   sim.Frame
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Scenario) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Scenario) Validate() error {
	if s.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalid, s.Dt)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalid, s.Duration)
	}

	ropes := make(map[string]bool, len(marionette.Ropes))
	for _, r := range marionette.Ropes {
		ropes[r] = true
	}
	seen := make(map[string]bool, len(s.Devices))
	for _, d := range s.Devices {
		if d.ID == "" {
			return fmt.Errorf("%w: device without id", ErrInvalid)
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate device %q", ErrInvalid, d.ID)
		}
		seen[d.ID] = true
		if d.Slot < 0 || d.Join < 0 {
			return fmt.Errorf("%w: device %q: negative slot or join", ErrInvalid, d.ID)
		}
		for i, k := range d.Keys {
			if k.At < 0 {
				return fmt.Errorf("%w: device %q key %d: negative time", ErrInvalid, d.ID, i)
			}
			for name := range k.Pulls {
				if !ropes[name] {
					return fmt.Errorf("%w: device %q key %d: no rope on %q", ErrInvalid, d.ID, i, name)
				}
			}
		}
	}
	return nil
}

// Events flattens the scenario into driver events ordered by time. Events
// at the same time keep device order with joins before motion.
func (s *Scenario) Events() []Timed {
	var out []Timed
	for _, d := range s.Devices {
		leaves := d.Leave > d.Join
		out = append(out, Timed{At: d.Join, Event: sim.DeviceAdded{ID: d.ID, Slot: d.Slot}})
		for _, k := range d.Keys {
			at := d.Join + k.At
			if leaves && at >= d.Leave {
				continue
			}
			out = append(out, Timed{At: at, Event: sim.Motion{ID: d.ID, Input: k.Input()}})
		}
		if leaves {
			out = append(out, Timed{At: d.Leave, Event: sim.DeviceRemoved{ID: d.ID}})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out
}

func (k Key) Input() marionette.Input {
	in := marionette.Input{Acc: k.Acc, Rot: k.Rot, Recalibrate: k.Recalibrate}
	if len(k.Pulls) > 0 {
		in.Pulls = make(map[string]vecmath.Vec3, len(k.Pulls))
		for name, v := range k.Pulls {
			in.Pulls[name] = v
		}
	}
	return in
}

// Run drives d at the scenario's fixed dt. Events due at or before a tick's
// start time are handled before it is stepped, so repeated runs from a
// fresh driver produce identical frames.
func Run(ctx context.Context, d *sim.Driver, s *Scenario) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}

	names := make([]string, 0, len(s.Params))
	for k := range s.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := d.SetParam(k, s.Params[k]); err != nil {
			return Result{}, err
		}
	}

	events := s.Events()
	steps := int(math.Round(s.Duration / s.Dt))
	var res Result
	next := 0
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		now := float64(i) * s.Dt
		for next < len(events) && events[next].At <= now+1e-9 {
			if err := d.Handle(events[next].Event); err != nil {
				return res, fmt.Errorf("t=%.3f: %w", events[next].At, err)
			}
			next++
		}
		res.Last = d.Step(s.Dt)
		res.Frames++
		res.Time = res.Last.Time
	}
	return res, nil
}

// Play sends each event to send at its wall-clock time, measured from the
// call. It stops at the first send error or when ctx is done.
func Play(ctx context.Context, s *Scenario, send func(sim.Event) error) error {
	if err := s.Validate(); err != nil {
		return err
	}

	start := time.Now()
	for _, ev := range s.Events() {
		due := start.Add(time.Duration(ev.At * float64(time.Second)))
		if wait := time.Until(due); wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := send(ev.Event); err != nil {
			return err
		}
	}
	return nil
}
