package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/marionette/internal/marionette"
	"github.com/san-kum/marionette/internal/motion"
	"github.com/san-kum/marionette/internal/physics"
)

var (
	// ErrUnknownParam indicates a SetParam call naming no tunable.
	ErrUnknownParam = errors.New("sim: unknown parameter")

	// ErrUnknownEvent indicates an event type the driver cannot handle.
	ErrUnknownEvent = errors.New("sim: unknown event")
)

// Metric accumulates a scalar over the frames it observes.
type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

// Observer is notified after every frame. It must not mutate the frame.
type Observer interface {
	OnFrame(f *Frame)
}

// Configurable exposes named tunables for live adjustment.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Substeps int
	// FirstDt replaces the measured delta of the very first tick.
	FirstDt float64
	// A measured delta above MaxDt is replaced by ClampDt.
	MaxDt        float64
	ClampDt      float64
	GroundHeight float64
	Params       physics.Params

	SlotSpacing float64
	SpawnHeight float64
	Marionette  marionette.Options
}

func DefaultConfig() Config {
	return Config{
		Substeps:     20,
		FirstDt:      1.0 / 600,
		MaxDt:        0.3,
		ClampDt:      1.0 / 60,
		GroundHeight: -1,
		Params:       physics.DefaultParams(),
		SlotSpacing:  2,
		SpawnHeight:  4,
		Marionette:   marionette.DefaultOptions(),
	}
}

func validateConfig(cfg Config) error {
	if cfg.Substeps <= 0 {
		return fmt.Errorf("substeps must be positive, got %d", cfg.Substeps)
	}
	if cfg.FirstDt <= 0 {
		return fmt.Errorf("first dt must be positive, got %f", cfg.FirstDt)
	}
	if cfg.MaxDt <= 0 {
		return fmt.Errorf("max dt must be positive, got %f", cfg.MaxDt)
	}
	if cfg.ClampDt <= 0 || cfg.ClampDt > cfg.MaxDt {
		return fmt.Errorf("clamp dt must be in (0, %f], got %f", cfg.MaxDt, cfg.ClampDt)
	}
	if cfg.Params.Friction < 0 || cfg.Params.Friction >= 1 {
		return fmt.Errorf("friction must be in [0, 1), got %f", cfg.Params.Friction)
	}
	if math.IsNaN(cfg.Params.Gravity) || math.IsInf(cfg.Params.Gravity, 0) {
		return fmt.Errorf("gravity must be finite, got %f", cfg.Params.Gravity)
	}
	return validateCalibration(cfg.Marionette.Calibration)
}

func validateCalibration(c motion.Calibration) error {
	if c.Damping < 0 || c.Damping > 1 {
		return fmt.Errorf("damping must be in [0, 1], got %f", c.Damping)
	}
	if c.CenterAttraction < 0 {
		return fmt.Errorf("center attraction must not be negative, got %f", c.CenterAttraction)
	}
	return nil
}
