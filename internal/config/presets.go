package config

import (
	"sort"

	"github.com/san-kum/marionette/internal/motion"
)

// Presets modify a default configuration.
var Presets = map[string]func(*Config){
	"display": func(c *Config) {},
	"recalibrated": func(c *Config) {
		c.Motion.Display = motion.RecalibratedCalibration
	},
	"floaty": func(c *Config) {
		c.Physics.Gravity = -3
		c.Physics.Friction = 0.0005
		c.Marionette.EntranceSeconds = 5
	},
	"stiff": func(c *Config) {
		c.Physics.Substeps = 40
		c.Marionette.Easing = "outQuart"
	},
	"heavy-friction": func(c *Config) {
		c.Physics.Friction = 0.02
	},
	"coarse": func(c *Config) {
		c.Marionette.Sections = 10
		c.Physics.Substeps = 10
	},
	"headless": func(c *Config) {
		c.Marionette.EntranceSeconds = 0
		c.Physics.FirstDt = 1.0 / 60
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
