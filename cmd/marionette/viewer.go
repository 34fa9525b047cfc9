package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/marionette/internal/config"
	"github.com/san-kum/marionette/internal/scenario"
	"github.com/san-kum/marionette/internal/sim"
	"github.com/san-kum/marionette/internal/stage"
	"github.com/san-kum/marionette/internal/viz"
)

// feedFunc pushes events into a running stage until ctx is done or the
// source runs dry.
type feedFunc func(ctx context.Context, st *stage.Stage, logger *log.Logger) error

func viewStage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	url := cfg.Viewer.RelayURL
	return runViewer(cmd.Context(), cfg, "marionette "+url, func(ctx context.Context, st *stage.Stage, logger *log.Logger) error {
		return stage.Dial(ctx, url, st, logger)
	})
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := loadScenario()
	if err != nil {
		return err
	}
	return runViewer(cmd.Context(), cfg, "marionette "+sc.Name, func(ctx context.Context, st *stage.Stage, logger *log.Logger) error {
		for name, v := range sc.Params {
			if err := st.Send(ctx, sim.SetParam{Name: name, Value: v}); err != nil {
				return err
			}
		}
		err := scenario.Play(ctx, sc, func(ev sim.Event) error { return st.Send(ctx, ev) })
		if err == nil {
			logger.Printf("scenario %s finished", sc.Name)
		}
		return err
	})
}

// runViewer starts a stage, feeds it from feed and shows it until the user
// quits.
func runViewer(ctx context.Context, cfg *config.Config, title string, feed feedFunc) error {
	logger := log.New(io.Discard, "", 0)
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "marionette")
		if err != nil {
			return err
		}
		defer f.Close()
		logger = log.Default()
	}

	d, err := newDriver(cfg)
	if err != nil {
		return err
	}
	d.SetLogger(logger)
	sink := viz.NewFrameSink()
	d.AddObserver(sink)

	st := stage.New(d, cfg.Viewer.FPS)
	st.SetLogger(logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stageDone := make(chan error, 1)
	go func() { stageDone <- st.Run(ctx) }()

	m := viz.NewModel(sink, st, viz.Options{
		Title:      title,
		FPS:        cfg.Viewer.FPS,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		SpringFreq: cfg.Viewer.SpringFreq,
		SpringDamp: cfg.Viewer.SpringDamp,
		Theme:      theme,
		GIFPath:    gifPath,
		Render: viz.RenderOptions{
			Hidden:       hidden,
			Ground:       true,
			GroundHeight: cfg.Physics.Ground,
		},
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	feedDone := make(chan error, 1)
	go func() {
		err := feed(ctx, st, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("feed: %v", err)
			p.Quit()
		}
		feedDone <- err
	}()

	_, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}

	cancel()
	<-stageDone
	feedErr := <-feedDone
	if feedErr != nil && !errors.Is(feedErr, context.Canceled) && !errors.Is(feedErr, stage.ErrStopped) {
		return fmt.Errorf("feed: %w", feedErr)
	}
	return runErr
}
