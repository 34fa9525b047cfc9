package marionette

import (
	"fmt"
	"sort"
)

// EasingFunc maps a phase in [0, 1] to progress in [0, 1].
type EasingFunc func(t float64) float64

var easings = map[string]EasingFunc{
	"linear":     func(t float64) float64 { return t },
	"inQuad":     func(t float64) float64 { return t * t },
	"outQuad":    func(t float64) float64 { return t * (2 - t) },
	"inOutQuad":  inOutQuad,
	"inCubic":    func(t float64) float64 { return t * t * t },
	"outCubic":   outCubic,
	"inOutCubic": InOutCubic,
	"inQuart":    func(t float64) float64 { return t * t * t * t },
	"outQuart":   outQuart,
	"inOutQuart": inOutQuart,
	"inQuint":    func(t float64) float64 { return t * t * t * t * t },
	"outQuint":   outQuint,
	"inOutQuint": inOutQuint,
}

func inOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func outCubic(t float64) float64 {
	t--
	return t*t*t + 1
}

func outQuart(t float64) float64 {
	t--
	return 1 - t*t*t*t
}

func outQuint(t float64) float64 {
	t--
	return 1 + t*t*t*t*t
}

// InOutCubic is the default entrance curve.
func InOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return (t-1)*(2*t-2)*(2*t-2) + 1
}

func inOutQuart(t float64) float64 {
	if t < 0.5 {
		return 8 * t * t * t * t
	}
	t--
	return 1 - 8*t*t*t*t
}

func inOutQuint(t float64) float64 {
	if t < 0.5 {
		return 16 * t * t * t * t * t
	}
	t--
	return 1 + 16*t*t*t*t*t
}

// Easing looks up an easing curve by name.
func Easing(name string) (EasingFunc, error) {
	f, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEasing, name)
	}
	return f, nil
}

func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
