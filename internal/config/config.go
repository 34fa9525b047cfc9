package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/marionette/internal/marionette"
	"github.com/san-kum/marionette/internal/motion"
	"github.com/san-kum/marionette/internal/physics"
	"github.com/san-kum/marionette/internal/sim"
)

const (
	DefaultAddr     = ":8080"
	DefaultRelayURL = "ws://localhost:8080/ws"
	DefaultFPS      = 30
)

type Config struct {
	Physics    PhysicsConfig    `yaml:"physics"`
	Motion     MotionConfig     `yaml:"motion"`
	Marionette MarionetteConfig `yaml:"marionette"`
	Relay      RelayConfig      `yaml:"relay"`
	Viewer     ViewerConfig     `yaml:"viewer"`
}

type PhysicsConfig struct {
	Friction    float64 `yaml:"friction"`
	Gravity     float64 `yaml:"gravity"`
	Ground      float64 `yaml:"ground"`
	Substeps    int     `yaml:"substeps"`
	FirstDt     float64 `yaml:"first_dt"`
	MaxDt       float64 `yaml:"max_dt"`
	ClampDt     float64 `yaml:"clamp_dt"`
	SlotSpacing float64 `yaml:"slot_spacing"`
	SpawnHeight float64 `yaml:"spawn_height"`
}

type MotionConfig struct {
	Display      motion.Calibration `yaml:"display"`
	Recalibrated motion.Calibration `yaml:"recalibrated"`
}

type MarionetteConfig struct {
	Sections        int     `yaml:"sections"`
	EntranceSeconds float64 `yaml:"entrance_seconds"`
	Easing          string  `yaml:"easing"`
	MotionScale     float64 `yaml:"motion_scale"`

	// Template is an optional YAML figure replacing the built-in one.
	Template string `yaml:"template,omitempty"`
}

type RelayConfig struct {
	Addr         string        `yaml:"addr"`
	ReadLimit    int64         `yaml:"read_limit"`
	PingInterval time.Duration `yaml:"ping_interval"`
	PongWait     time.Duration `yaml:"pong_wait"`
	WriteWait    time.Duration `yaml:"write_wait"`
}

type ViewerConfig struct {
	FPS        int     `yaml:"fps"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	RelayURL   string  `yaml:"relay_url"`
	SpringFreq float64 `yaml:"spring_freq"`
	SpringDamp float64 `yaml:"spring_damp"`
}

func DefaultConfig() *Config {
	p := physics.DefaultParams()
	s := sim.DefaultConfig()
	m := marionette.DefaultOptions()
	return &Config{
		Physics: PhysicsConfig{
			Friction:    p.Friction,
			Gravity:     p.Gravity,
			Ground:      s.GroundHeight,
			Substeps:    s.Substeps,
			FirstDt:     s.FirstDt,
			MaxDt:       s.MaxDt,
			ClampDt:     s.ClampDt,
			SlotSpacing: s.SlotSpacing,
			SpawnHeight: s.SpawnHeight,
		},
		Motion: MotionConfig{
			Display:      m.Calibration,
			Recalibrated: m.Recalibrated,
		},
		Marionette: MarionetteConfig{
			Sections:        m.Sections,
			EntranceSeconds: m.EntranceSeconds,
			Easing:          m.Easing,
			MotionScale:     m.MotionScale,
		},
		Relay: RelayConfig{
			Addr:         DefaultAddr,
			ReadLimit:    1 << 20,
			PingInterval: 25 * time.Second,
			PongWait:     60 * time.Second,
			WriteWait:    10 * time.Second,
		},
		Viewer: ViewerConfig{
			FPS:        DefaultFPS,
			Width:      80,
			Height:     30,
			RelayURL:   DefaultRelayURL,
			SpringFreq: 4,
			SpringDamp: 1,
		},
	}
}

// Load overlays the YAML file at path on the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the YAML file at path on cfg. Keys absent from the file
// keep their current values.
func LoadInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SimConfig converts the physics, motion and marionette sections into a
// driver configuration.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Substeps:     c.Physics.Substeps,
		FirstDt:      c.Physics.FirstDt,
		MaxDt:        c.Physics.MaxDt,
		ClampDt:      c.Physics.ClampDt,
		GroundHeight: c.Physics.Ground,
		Params: physics.Params{
			Friction: c.Physics.Friction,
			Gravity:  c.Physics.Gravity,
		},
		SlotSpacing: c.Physics.SlotSpacing,
		SpawnHeight: c.Physics.SpawnHeight,
		Marionette: marionette.Options{
			Sections:        c.Marionette.Sections,
			EntranceSeconds: c.Marionette.EntranceSeconds,
			Easing:          c.Marionette.Easing,
			MotionScale:     c.Marionette.MotionScale,
			Calibration:     c.Motion.Display,
			Recalibrated:    c.Motion.Recalibrated,
		},
	}
}

// Template loads the configured figure, or returns nil for the built-in one.
func (c *Config) Template() (*physics.Template, error) {
	if c.Marionette.Template == "" {
		return nil, nil
	}
	return physics.LoadTemplate(c.Marionette.Template)
}
