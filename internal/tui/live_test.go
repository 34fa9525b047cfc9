package tui

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/marionette/internal/sim"
	"github.com/san-kum/marionette/internal/viz"
)

func TestLiveRendererThrottles(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Marionette.Sections = 6
	d, err := sim.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	d.SetLogger(log.New(io.Discard, "", 0))
	if err := d.Handle(sim.DeviceAdded{ID: "p1", Slot: 0}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	r := NewLiveRenderer("duet", 10, viz.RenderOptions{})
	r.SetOutput(&buf)
	clock := time.Unix(0, 0)
	r.now = func() time.Time { return clock }
	d.AddObserver(r)

	r.Start()
	// 30 frames 50ms apart at 10 fps: every second frame is drawn
	for i := 0; i < 30; i++ {
		clock = clock.Add(50 * time.Millisecond)
		d.Step(1.0 / 60)
	}
	r.Stop()

	if r.Drawn() != 15 {
		t.Errorf("expected 15 drawn frames, got %d", r.Drawn())
	}
	out := buf.String()
	if !strings.HasPrefix(out, hideCursor) || !strings.HasSuffix(out, showCursor) {
		t.Error("expected cursor to be hidden and restored")
	}
	if strings.Count(out, clearScreen) != r.Drawn() {
		t.Error("each drawn frame should clear the screen")
	}
	if !strings.Contains(out, "p1@0") {
		t.Error("expected the device in the status line")
	}
}
