// Package optim sweeps driver parameters over a scenario and ranks the
// results by a metric.
package optim

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/marionette/internal/scenario"
	"github.com/san-kum/marionette/internal/sim"
)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs sc on a fresh driver for every grid point and returns the
// point with the lowest metricName, plus all trials in grid order. Grid
// values override the scenario's own params.
func (g *GridSearch) Search(
	ctx context.Context,
	newDriver func() (*sim.Driver, error),
	sc *scenario.Scenario,
	metricName string,
) (Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Trial{}, nil, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := Trial{Value: math.Inf(1)}
	trials := make([]Trial, 0, g.Size())

	var search func(depth int, current map[string]float64) error
	search = func(depth int, current map[string]float64) error {
		if depth == len(g.paramNames) {
			val, err := g.evaluate(ctx, newDriver, sc, current, metricName)
			if err != nil {
				return err
			}
			trial := Trial{Params: current, Value: val}
			trials = append(trials, trial)
			if val < best.Value {
				best = trial
			}
			return nil
		}

		paramName := g.paramNames[depth]
		for _, val := range g.ranges[depth] {
			newParams := make(map[string]float64, len(current)+1)
			for k, v := range current {
				newParams[k] = v
			}
			newParams[paramName] = val

			if err := search(depth+1, newParams); err != nil {
				return err
			}
		}
		return nil
	}

	if err := search(0, map[string]float64{}); err != nil {
		return Trial{}, trials, err
	}
	return best, trials, nil
}

func (g *GridSearch) evaluate(
	ctx context.Context,
	newDriver func() (*sim.Driver, error),
	sc *scenario.Scenario,
	params map[string]float64,
	metricName string,
) (float64, error) {
	d, err := newDriver()
	if err != nil {
		return 0, err
	}

	run := *sc
	run.Params = make(map[string]float64, len(sc.Params)+len(params))
	for k, v := range sc.Params {
		run.Params[k] = v
	}
	for k, v := range params {
		run.Params[k] = v
	}

	if _, err := scenario.Run(ctx, d, &run); err != nil {
		return 0, fmt.Errorf("%v: %w", params, err)
	}
	val, ok := d.MetricValues()[metricName]
	if !ok {
		return 0, fmt.Errorf("optim: driver has no metric %q", metricName)
	}
	return val, nil
}

// ParseAxis reads "name=v1,v2,..." as one grid axis.
func ParseAxis(spec string) (string, []float64, error) {
	name, list, ok := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("optim: axis %q is not name=v1,v2", spec)
	}
	var values []float64
	for _, s := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", nil, fmt.Errorf("optim: axis %s: %w", name, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}
