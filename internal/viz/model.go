package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/marionette/internal/metrics"
	"github.com/san-kum/marionette/internal/sim"
)

const (
	panelWidth      = 40
	historyCapacity = 300
	controlTimeout  = time.Second
)

// Controls adjusts the running stage from the viewer.
type Controls interface {
	Friction(ctx context.Context) (float64, error)
	SetFriction(ctx context.Context, f float64) error
}

type Options struct {
	Title      string
	FPS        int
	Width      int
	Height     int
	SpringFreq float64
	SpringDamp float64
	Render     RenderOptions
	Theme      string
	// GIFPath is where a recording is written when it is stopped.
	GIFPath string
}

type TickMsg time.Time

type frictionMsg struct {
	value float64
	err   error
}

type savedMsg struct {
	path string
	err  error
}

// Model is the bubbletea viewer over a FrameSink.
type Model struct {
	sink *FrameSink
	ctl  Controls
	opts Options

	canvas *Canvas
	cam    *Camera
	theme  Theme
	st     styles

	frame    sim.Frame
	strain   *metrics.Strain
	energy   *metrics.KineticEnergy
	history  []float64
	friction float64
	paused   bool
	showHelp bool
	rec      *Recorder
	status   string
}

func NewModel(sink *FrameSink, ctl Controls, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 30
	}
	if opts.SpringFreq <= 0 {
		opts.SpringFreq = 4
	}
	if opts.SpringDamp <= 0 {
		opts.SpringDamp = 1
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "marionette.gif"
	}
	if opts.Title == "" {
		opts.Title = "marionette"
	}
	theme := GetTheme(opts.Theme)
	return Model{
		sink:    sink,
		ctl:     ctl,
		opts:    opts,
		canvas:  NewCanvas(opts.Width, opts.Height),
		cam:     NewCamera(opts.FPS, opts.SpringFreq, opts.SpringDamp),
		theme:   theme,
		st:      newStyles(theme),
		strain:  metrics.NewStrain(),
		energy:  metrics.NewKineticEnergy(),
		history: make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.fetchFriction())
}

func (m Model) fetchFriction() tea.Cmd {
	if m.ctl == nil {
		return nil
	}
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
		defer cancel()
		f, err := ctl.Friction(ctx)
		return frictionMsg{value: f, err: err}
	}
}

func (m Model) setFriction(f float64) tea.Cmd {
	if m.ctl == nil {
		return nil
	}
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
		defer cancel()
		if err := ctl.SetFriction(ctx, f); err != nil {
			return frictionMsg{err: err}
		}
		v, err := ctl.Friction(ctx)
		return frictionMsg{value: v, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		w := msg.Width - panelWidth - 6
		h := msg.Height - 2
		if w > 10 && h > 5 {
			m.canvas.Resize(w, h)
		}

	case TickMsg:
		if !m.paused {
			if f, ok := m.sink.Latest(); ok {
				m.observe(f)
			}
		}
		m.cam.Follow(m.frame.Camera)
		Render(m.canvas, m.cam, &m.frame, m.opts.Render)
		if m.rec != nil {
			m.rec.Capture(m.canvas)
		}
		return m, m.tick()

	case frictionMsg:
		if msg.err != nil {
			m.status = "friction: " + msg.err.Error()
		} else {
			m.friction = msg.value
		}

	case savedMsg:
		if msg.err != nil {
			m.status = "record: " + msg.err.Error()
		} else {
			m.status = "saved " + msg.path
		}
	}
	return m, nil
}

func (m *Model) observe(f sim.Frame) {
	m.frame = f
	m.strain.Observe(&m.frame)
	m.energy.Observe(&m.frame)
	if len(m.history) == historyCapacity {
		copy(m.history, m.history[1:])
		m.history = m.history[:historyCapacity-1]
	}
	m.history = append(m.history, m.strain.Sample(&m.frame))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.paused = !m.paused
	case "+", "=":
		m.cam.ZoomIn()
	case "-", "_":
		m.cam.ZoomOut()
	case "f":
		return m, m.setFriction(m.friction / 2)
	case "F":
		f := m.friction * 2
		if f == 0 {
			f = 0.001
		}
		return m, m.setFriction(min(f, 0.5))
	case "h":
		m.opts.Render.Hidden = !m.opts.Render.Hidden
	case "t":
		names := ThemeNames()
		for i, name := range names {
			if name == m.theme.Name {
				m.theme = GetTheme(names[(i+1)%len(names)])
				m.st = newStyles(m.theme)
				break
			}
		}
	case "g":
		if m.rec == nil {
			m.rec = NewRecorder(m.theme, m.opts.FPS)
			m.status = "recording"
			return m, nil
		}
		rec, path := m.rec, m.opts.GIFPath
		m.rec = nil
		return m, func() tea.Msg { return savedMsg{path: path, err: rec.Save(path)} }
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) View() string {
	canvasView := m.st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.st.header.Render(strings.ToUpper(m.opts.Title)) + "\n")

	state := "LIVE"
	switch {
	case m.paused:
		state = "PAUSED"
	case m.rec != nil:
		state = fmt.Sprintf("REC %d", m.rec.Len())
	}
	s.WriteString(m.st.warn.Render(state) + "\n\n")

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	row("Devices", fmt.Sprintf("%d", len(m.frame.Bodies)))
	row("Tick", fmt.Sprintf("%d", m.frame.Tick))
	row("Time", fmt.Sprintf("%.2fs", m.frame.Time))
	row("Friction", fmt.Sprintf("%.4f", m.friction))
	row("Zoom", fmt.Sprintf("%.2fx", m.cam.Zoom))
	row("Energy", fmt.Sprintf("%.3f", m.energy.Value()))
	row("Strain", fmt.Sprintf("%.4f (peak %.4f)", m.strain.Value(), m.strain.Peak()))

	for _, b := range m.frame.Bodies {
		row("  "+b.ID, fmt.Sprintf("slot %d", b.Slot))
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(panelWidth-12), asciigraph.Caption("Strain"))
		s.WriteString("\n" + m.st.graph.Render(chart) + "\n")
	} else {
		s.WriteString("\n" + m.st.graph.Render(Sparkline(m.history, panelWidth-6)) + "\n")
	}

	if m.status != "" {
		s.WriteString("\n" + m.st.warn.Render(m.status) + "\n")
	}
	s.WriteString(m.st.help.Render("SP:Pause +/-:Zoom f/F:Friction\nH:Hidden T:Theme G:Record ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `  Space  pause or resume the view
  + / -  zoom in / out
  f / F  halve / double friction
  h      show rope braces
  t      cycle themes
  g      start / stop GIF recording
  q      quit`
