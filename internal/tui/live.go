// Package tui prints frames straight to a terminal with ANSI codes, for
// headless runs where the interactive viewer is not wanted.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/san-kum/marionette/internal/sim"
	"github.com/san-kum/marionette/internal/viz"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a sim.Observer that redraws at most frameRate times per
// second of wall time.
type LiveRenderer struct {
	title     string
	frameRate int
	lastFrame time.Time
	out       io.Writer
	now       func() time.Time

	canvas *viz.Canvas
	cam    *viz.Camera
	opts   viz.RenderOptions
	drawn  int
}

var _ sim.Observer = (*LiveRenderer)(nil)

func NewLiveRenderer(title string, frameRate int, opts viz.RenderOptions) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		title:     title,
		frameRate: frameRate,
		out:       os.Stdout,
		now:       time.Now,
		canvas:    viz.NewCanvas(width, height),
		cam:       viz.NewCamera(frameRate, 4, 1),
		opts:      opts,
	}
}

// SetOutput redirects drawing, mainly for tests.
func (r *LiveRenderer) SetOutput(w io.Writer) { r.out = w }

func (r *LiveRenderer) OnFrame(f *sim.Frame) {
	now := r.now()
	if now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = now

	r.cam.Follow(f.Camera)
	viz.Render(r.canvas, r.cam, f, r.opts)
	r.render(f)
	r.drawn++
}

// Drawn counts frames actually written.
func (r *LiveRenderer) Drawn() int { return r.drawn }

func (r *LiveRenderer) render(f *sim.Frame) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs  tick %d\n", r.title, f.Time, f.Tick))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range strings.Split(r.canvas.String(), "\n") {
		b.WriteString("  ")
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	status := "  "
	for _, body := range f.Bodies {
		c := body.Controller
		status += fmt.Sprintf("%s@%d (%.2f %.2f %.2f) ", body.ID, body.Slot, c.X, c.Y, c.Z)
	}
	b.WriteString(status + "\n")

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
