package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/marionette/internal/metrics"
	"github.com/san-kum/marionette/internal/sim"
	"github.com/san-kum/marionette/internal/vecmath"
)

func recordedSeries() *metrics.Series {
	s := metrics.NewSeries(metrics.NewStrain(), metrics.NewKineticEnergy())
	for i := 0; i < 3; i++ {
		s.OnFrame(&sim.Frame{
			Time: float64(i) / 60,
			Bodies: []sim.Body{{
				Particles: []sim.ParticleView{{Vel: vecmath.V(float64(i), 0, 0), Mass: 2}},
				Links:     []sim.LinkView{{Size: 0.01, Rest: 1, Length: 1 + 0.1*float64(i)}},
			}},
		})
	}
	return s
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Scenario: "test",
		Dt:       1.0 / 60,
		Duration: 0.05,
		Substeps: 20,
		Metrics:  map[string]float64{"strain": 0.1},
	}
	runID, err := st.Save(meta, recordedSeries())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Scenario != "test" || loaded.Substeps != 20 || loaded.Frames != 3 {
		t.Errorf("unexpected metadata %+v", loaded)
	}

	if loaded.Metrics["strain"] != 0.1 {
		t.Errorf("expected strain 0.1, got %f", loaded.Metrics["strain"])
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}

	if len(series.Times) != 3 {
		t.Errorf("expected 3 times, got %d", len(series.Times))
	}
	if len(series.Names) != 2 || series.Names[1] != "kinetic_energy" {
		t.Errorf("unexpected columns %v", series.Names)
	}
	// 0.5 * 2 * 2^2
	if ke := series.Values["kinetic_energy"][2]; ke != 4 {
		t.Errorf("expected kinetic energy 4, got %f", ke)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(RunMetadata{Scenario: "a"}, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(RunMetadata{Scenario: "b"}, recordedSeries()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Scenario != "b" {
		t.Errorf("expected newest run first, got %s", runs[0].Scenario)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(RunMetadata{Scenario: "test"}, recordedSeries())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "metrics.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.json")
	in := FrameExport{
		Scenario: "solo",
		Params:   map[string]float64{"friction": 0.001},
		Frame: sim.Frame{
			Tick:   7,
			Camera: vecmath.V(0, -0.5, -3),
			Bodies: []sim.Body{{ID: "p", Particles: []sim.ParticleView{{Name: "head", Pos: vecmath.V(1, 2, 3)}}}},
		},
	}

	if err := ExportFrame(path, in); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	out, err := LoadFrame(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if out.Frame.Tick != 7 || out.Frame.Bodies[0].Particles[0].Pos != vecmath.V(1, 2, 3) {
		t.Errorf("unexpected frame %+v", out.Frame)
	}
}
