package scenario

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/san-kum/marionette/internal/sim"
	"github.com/san-kum/marionette/internal/vecmath"
)

func newDriver(t testing.TB) *sim.Driver {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Marionette.Sections = 6
	d, err := sim.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	d.SetLogger(log.New(io.Discard, "", 0))
	return d
}

func short() *Scenario {
	return &Scenario{
		Name:     "short",
		Duration: 0.5,
		Dt:       0.05,
		Devices: []Device{
			{ID: "b", Slot: 1, Join: 0.1, Leave: 0.3, Keys: []Key{
				{At: 0, Rot: vecmath.V(10, 0, 0)},
				{At: 0.25},
			}},
			{ID: "a", Slot: 0, Keys: []Key{
				{At: 0.1, Pulls: map[string]vecmath.Vec3{"cleft": vecmath.V(0, 0.2, 0)}},
			}},
		},
	}
}

func TestEventsOrdered(t *testing.T) {
	events := short().Events()

	type kind struct {
		at float64
		ev string
	}
	var got []kind
	for _, e := range events {
		var s string
		switch ev := e.Event.(type) {
		case sim.DeviceAdded:
			s = "add " + ev.ID
		case sim.DeviceRemoved:
			s = "remove " + ev.ID
		case sim.Motion:
			s = "motion " + ev.ID
		}
		got = append(got, kind{e.At, s})
	}

	want := []kind{
		{0, "add a"},
		{0.1, "add b"},
		{0.1, "motion b"},
		{0.1, "motion a"},
		{0.3, "remove b"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"zero dt", func(s *Scenario) { s.Dt = 0 }},
		{"zero duration", func(s *Scenario) { s.Duration = 0 }},
		{"duplicate id", func(s *Scenario) { s.Devices[1].ID = "b" }},
		{"empty id", func(s *Scenario) { s.Devices[0].ID = "" }},
		{"negative key", func(s *Scenario) { s.Devices[0].Keys[0].At = -1 }},
		{"unknown rope", func(s *Scenario) {
			s.Devices[1].Keys[0].Pulls = map[string]vecmath.Vec3{"cfront": {}}
		}},
	}

	if err := short().Validate(); err != nil {
		t.Fatalf("valid scenario rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := short()
			tt.mutate(sc)
			if err := sc.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestRun(t *testing.T) {
	d := newDriver(t)
	res, err := Run(context.Background(), d, short())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Frames != 10 {
		t.Errorf("expected 10 frames, got %d", res.Frames)
	}
	if len(res.Last.Bodies) != 1 || res.Last.Bodies[0].ID != "a" {
		t.Errorf("expected only device a at the end, got %+v", d.Devices())
	}
}

func TestRunDeterministic(t *testing.T) {
	a, err := Run(context.Background(), newDriver(t), Default())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(context.Background(), newDriver(t), Default())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical runs produced different frames")
	}
}

func TestRunAppliesParams(t *testing.T) {
	sc := short()
	sc.Params = map[string]float64{"friction": 0.05}
	d := newDriver(t)
	if _, err := Run(context.Background(), d, sc); err != nil {
		t.Fatal(err)
	}
	if d.Friction() != 0.05 {
		t.Errorf("expected friction 0.05, got %f", d.Friction())
	}

	sc.Params = map[string]float64{"friction": 2}
	if _, err := Run(context.Background(), newDriver(t), sc); err == nil {
		t.Error("expected invalid friction to fail the run")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Run(ctx, newDriver(t), short())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res.Frames != 0 {
		t.Errorf("expected no frames, got %d", res.Frames)
	}
}

func TestPlay(t *testing.T) {
	sc := &Scenario{
		Duration: 1,
		Dt:       0.01,
		Devices: []Device{{ID: "p", Keys: []Key{{At: 0.02}, {At: 0.04}}}},
	}
	var got []sim.Event
	start := time.Now()
	err := Play(context.Background(), sc, func(ev sim.Event) error {
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if _, ok := got[0].(sim.DeviceAdded); !ok {
		t.Errorf("expected join first, got %T", got[0])
	}
	if el := time.Since(start); el < 40*time.Millisecond {
		t.Errorf("played too fast: %v", el)
	}
}

func TestPlayStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Play(context.Background(), short(), func(sim.Event) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Errorf("expected one call and boom, got %d calls, %v", calls, err)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duet.yaml")
	if err := Default().Save(path); err != nil {
		t.Fatal(err)
	}
	sc, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Name != "duet" || len(sc.Devices) != 2 {
		t.Errorf("unexpected scenario: %s with %d devices", sc.Name, len(sc.Devices))
	}
	if !reflect.DeepEqual(sc.Events(), Default().Events()) {
		t.Error("events changed across save and load")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("name: x\ndt: 0\nduration: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
