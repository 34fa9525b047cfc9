package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/san-kum/marionette/internal/analysis"
	"github.com/san-kum/marionette/internal/config"
	"github.com/san-kum/marionette/internal/marionette"
	"github.com/san-kum/marionette/internal/metrics"
	"github.com/san-kum/marionette/internal/optim"
	"github.com/san-kum/marionette/internal/relay"
	"github.com/san-kum/marionette/internal/scenario"
	"github.com/san-kum/marionette/internal/sim"
	"github.com/san-kum/marionette/internal/storage"
	"github.com/san-kum/marionette/internal/tui"
	"github.com/san-kum/marionette/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	envFile    string

	// physics overrides
	friction float64
	substeps int
	sections int
	easing   string

	addr     string
	relayURL string

	scenarioFile string
	dt           float64
	duration     float64

	frameRate int
	theme     string
	gifPath   string
	logFile   string
	hidden    bool

	outFile  string
	frameOut string
	svgFile  string
	dump     bool

	metric string
	settle float64
	live   bool
	axes   []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "marionette",
		Short:        "phone-driven marionette stage",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".marionette", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file")
	rootCmd.PersistentFlags().Float64Var(&friction, "friction", 0, "velocity damping per step")
	rootCmd.PersistentFlags().IntVar(&substeps, "substeps", 0, "physics sub-steps per tick")
	rootCmd.PersistentFlags().IntVar(&sections, "sections", 0, "rope sections")
	rootCmd.PersistentFlags().StringVar(&easing, "easing", "", "entrance easing")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the websocket relay between phones and stages",
		Args:  cobra.NoArgs,
		RunE:  serveRelay,
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "connect to a relay and show the stage in the terminal",
		Args:  cobra.NoArgs,
		RunE:  viewStage,
	}
	viewCmd.Flags().StringVar(&relayURL, "relay", config.DefaultRelayURL, "relay websocket url")
	addViewerFlags(viewCmd)

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "play a scenario on a live stage without phones",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}
	demoCmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file (yaml), built-in duet when empty")
	addViewerFlags(demoCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario headless and store its metrics",
		Args:  cobra.NoArgs,
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file (yaml), built-in duet when empty")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep, scenario value when zero")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration, scenario value when zero")
	runCmd.Flags().BoolVar(&live, "live", false, "print frames to the terminal while running")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of run metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&metric, "metric", "strain", "series to analyse")
	analyzeCmd.Flags().Float64Var(&settle, "settle", 0.01, "threshold for the settle time")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search driver params over a scenario",
		Args:  cobra.NoArgs,
		RunE:  sweepParams,
	}
	sweepCmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file (yaml), built-in duet when empty")
	sweepCmd.Flags().StringArrayVar(&axes, "param", []string{"friction=0.0005,0.001,0.005,0.02"}, "grid axis name=v1,v2 (repeatable)")
	sweepCmd.Flags().StringVar(&metric, "metric", "strain", "metric to minimise")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "inspect or save the marionette template",
		Args:  cobra.NoArgs,
		RunE:  showTemplate,
	}
	templateCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the template as yaml")
	templateCmd.Flags().BoolVar(&dump, "dump", false, "print every node and link")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "export one frame of a scenario as json and svg",
		Args:  cobra.NoArgs,
		RunE:  snapshotFrame,
	}
	snapshotCmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file (yaml), built-in duet when empty")
	snapshotCmd.Flags().Float64Var(&duration, "at", 2, "scenario time of the snapshot")
	snapshotCmd.Flags().StringVarP(&frameOut, "out", "o", "-", "json output, - for stdout")
	snapshotCmd.Flags().StringVar(&svgFile, "svg", "", "also render the frame to this svg file")
	snapshotCmd.Flags().StringVar(&theme, "theme", "stage", "svg colors")
	snapshotCmd.Flags().BoolVar(&hidden, "hidden", false, "draw rope braces")

	rootCmd.AddCommand(serveCmd, viewCmd, demoCmd, runCmd, listCmd, plotCmd, analyzeCmd, sweepCmd, presetsCmd, templateCmd, snapshotCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addViewerFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "stage and viewer frame rate")
	cmd.Flags().StringVar(&theme, "theme", "stage", "color theme ("+fmt.Sprint(viz.ThemeNames())+")")
	cmd.Flags().StringVar(&gifPath, "gif", "marionette.gif", "where g saves a recording")
	cmd.Flags().StringVar(&logFile, "log", "", "log to this file while the viewer runs")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "draw rope braces")
}

// loadConfig starts from the preset, overlays the config file and the
// environment, then any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (have %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.LoadInto(cfg, configFile); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if err := config.LoadEnv(cfg, envFile); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("friction") {
		cfg.Physics.Friction = friction
	}
	if flags.Changed("substeps") {
		cfg.Physics.Substeps = substeps
	}
	if flags.Changed("sections") {
		cfg.Marionette.Sections = sections
	}
	if flags.Changed("easing") {
		cfg.Marionette.Easing = easing
	}
	if flags.Changed("addr") {
		cfg.Relay.Addr = addr
	}
	if flags.Changed("relay") {
		cfg.Viewer.RelayURL = relayURL
	}
	if flags.Changed("fps") {
		cfg.Viewer.FPS = frameRate
	}
	return cfg, nil
}

func newDriver(cfg *config.Config) (*sim.Driver, error) {
	tmpl, err := cfg.Template()
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	return sim.New(cfg.SimConfig(), tmpl)
}

func loadScenario() (*scenario.Scenario, error) {
	if scenarioFile == "" {
		return scenario.Default(), nil
	}
	return scenario.Load(scenarioFile)
}

func serveRelay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	hub := relay.NewHub()
	go hub.Run()
	defer hub.Stop()

	srv := relay.NewServer(hub, relay.Options{
		ReadLimit:    cfg.Relay.ReadLimit,
		PingInterval: cfg.Relay.PingInterval,
		PongWait:     cfg.Relay.PongWait,
		WriteWait:    cfg.Relay.WriteWait,
	})
	httpSrv := &http.Server{
		Addr:              cfg.Relay.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Printf("relay listening on %s", cfg.Relay.Addr)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutting down relay")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := loadScenario()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dt") {
		sc.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		sc.Duration = duration
	}

	d, err := newDriver(cfg)
	if err != nil {
		return err
	}
	for _, m := range metrics.Default() {
		d.AddMetric(m)
	}
	series := metrics.NewSeries(metrics.Default()...)
	d.AddObserver(series)
	if live {
		lr := tui.NewLiveRenderer(sc.Name, config.DefaultFPS, viz.RenderOptions{
			Ground:       true,
			GroundHeight: cfg.Physics.Ground,
		})
		d.AddObserver(lr)
		lr.Start()
		defer lr.Stop()
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s...\n", sc.Name)
	start := time.Now()

	res, err := scenario.Run(cmd.Context(), d, sc)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Scenario: sc.Name,
		Dt:       sc.Dt,
		Duration: sc.Duration,
		Substeps: cfg.Physics.Substeps,
		Friction: d.Friction(),
		Devices:  len(sc.Devices),
		Metrics:  d.MetricValues(),
	}, series)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d (%.2fs simulated)\n", res.Frames, res.Time)
	fmt.Println("\nmetrics:")
	values := d.MetricValues()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, values[name])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tSUBSTEPS\tDEVICES\tFRAMES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Substeps,
			run.Devices,
			run.Frames,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	for _, name := range series.Names {
		graph := asciigraph.Plot(series.Values[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	values, ok := series.Values[metric]
	if !ok || len(values) < 2 {
		return fmt.Errorf("no %q data in run %s (have %v)", metric, runID, series.Names)
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)

	spec := analysis.PowerSpectrum(values, meta.Dt).Band(10)
	if len(spec.Power) > 1 {
		graph := asciigraph.Plot(spec.Power,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+metric+", 0-10 Hz)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if freq, _, ok := spec.Dominant(); ok {
		fmt.Printf("dominant frequency: %.3f hz\n", freq)
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	} else {
		fmt.Println("no dominant frequency")
	}

	if t := analysis.SettleTime(series.Times, values, settle); t >= 0 {
		fmt.Printf("settled below %g at %.2fs\n", settle, t)
	} else {
		fmt.Printf("still above %g at the end of the run\n", settle)
	}
	return nil
}

func sweepParams(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := loadScenario()
	if err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	for _, spec := range axes {
		name, values, err := optim.ParseAxis(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	grid := optim.NewGridSearch(names, ranges)
	fmt.Printf("sweeping %d points of %s...\n", grid.Size(), sc.Name)

	best, trials, err := grid.Search(cmd.Context(), func() (*sim.Driver, error) {
		d, err := newDriver(cfg)
		if err != nil {
			return nil, err
		}
		for _, m := range metrics.Default() {
			d.AddMetric(m)
		}
		return d, nil
	}, sc, metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metric))
	for _, tr := range trials {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", tr.Params[n])
		}
		fmt.Fprintf(w, "%.6f\n", tr.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6f at %v\n", metric, best.Value, best.Params)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFRICTION\tSUBSTEPS\tSECTIONS\tEASING\tENTRANCE")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.4f\t%d\t%d\t%s\t%.1fs\n",
			name,
			cfg.Physics.Friction,
			cfg.Physics.Substeps,
			cfg.Marionette.Sections,
			cfg.Marionette.Easing,
			cfg.Marionette.EntranceSeconds,
		)
	}
	return w.Flush()
}

func showTemplate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tmpl, err := cfg.Template()
	if err != nil {
		return err
	}
	if tmpl == nil {
		tmpl, err = marionette.DefaultTemplate(cfg.Marionette.Sections)
		if err != nil {
			return err
		}
	}

	if outFile != "" {
		if err := tmpl.Save(outFile); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	}

	if dump {
		pretty.Println(tmpl.Nodes)
		pretty.Println(tmpl.Links)
		return nil
	}

	pinned, braces := 0, 0
	for _, n := range tmpl.Nodes {
		if n.Pinned {
			pinned++
		}
	}
	for _, l := range tmpl.Links {
		if l.Size == 0 {
			braces++
		}
	}
	fmt.Printf("nodes: %d (%d pinned)\n", len(tmpl.Nodes), pinned)
	fmt.Printf("links: %d (%d hidden)\n", len(tmpl.Links), braces)
	fmt.Printf("rope sections: %d\n", cfg.Marionette.Sections)
	return nil
}

func snapshotFrame(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := loadScenario()
	if err != nil {
		return err
	}
	sc.Duration = duration

	d, err := newDriver(cfg)
	if err != nil {
		return err
	}
	res, err := scenario.Run(cmd.Context(), d, sc)
	if err != nil {
		return err
	}

	if err := storage.ExportFrame(frameOut, storage.FrameExport{
		Scenario: sc.Name,
		Params:   d.GetParams(),
		Frame:    res.Last,
	}); err != nil {
		return err
	}

	if svgFile == "" {
		return nil
	}
	canvas := viz.NewCanvas(cfg.Viewer.Width, cfg.Viewer.Height)
	cam := viz.NewCamera(cfg.Viewer.FPS, cfg.Viewer.SpringFreq, cfg.Viewer.SpringDamp)
	cam.Snap(res.Last.Camera)
	viz.Render(canvas, cam, &res.Last, viz.RenderOptions{
		Hidden:       hidden,
		Ground:       true,
		GroundHeight: cfg.Physics.Ground,
	})
	t := viz.GetTheme(theme)
	svg := viz.CanvasToSVG(canvas, 4, string(t.Figure), string(t.Background))
	if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", svgFile)
	return nil
}
