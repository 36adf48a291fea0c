package fluid

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Point is one tabulated state at 1 atm.
type Point struct {
	TemperatureF float64
	Properties
}

// Table interpolates tabulated properties linearly in temperature. It is
// safe for concurrent use once built.
type Table struct {
	curves map[string]*curves
}

type curves struct {
	low, high    float64
	density      interp.PiecewiseLinear
	specificHeat interp.PiecewiseLinear
	viscosity    interp.PiecewiseLinear
	conductivity interp.PiecewiseLinear
}

// NewTable builds a table from points per substance. Each substance needs at
// least two points with distinct temperatures.
func NewTable(data map[string][]Point) (*Table, error) {
	t := &Table{curves: make(map[string]*curves, len(data))}
	for name, pts := range data {
		if len(pts) < 2 {
			return nil, fmt.Errorf("fluid: %s needs at least two points", name)
		}
		pts = append([]Point(nil), pts...)
		sort.Slice(pts, func(i, j int) bool { return pts[i].TemperatureF < pts[j].TemperatureF })

		n := len(pts)
		xs := make([]float64, n)
		rho, cp, mu, k := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
		for i, p := range pts {
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("fluid: %s at %g F: %w", name, p.TemperatureF, err)
			}
			xs[i] = p.TemperatureF
			rho[i], cp[i], mu[i], k[i] = p.DensityLbFt3, p.SpecificHeatBtuLbF, p.ViscosityLbFtH, p.ConductivityBtuHFt
		}
		c := &curves{low: xs[0], high: xs[n-1]}
		for _, fit := range []struct {
			pl *interp.PiecewiseLinear
			ys []float64
		}{{&c.density, rho}, {&c.specificHeat, cp}, {&c.viscosity, mu}, {&c.conductivity, k}} {
			if err := fit.pl.Fit(xs, fit.ys); err != nil {
				return nil, fmt.Errorf("fluid: %s: %v", name, err)
			}
		}
		t.curves[Normalize(name)] = c
	}
	return t, nil
}

func (t *Table) Lookup(_ context.Context, substance string, temperatureF float64) (p Properties, err error) {
	defer func() { Observe("table", err) }()
	c, ok := t.curves[Normalize(substance)]
	if !ok {
		return Properties{}, fmt.Errorf("%w: %q", ErrUnknownSubstance, substance)
	}
	if temperatureF < c.low || temperatureF > c.high {
		return Properties{}, fmt.Errorf("%w: %s at %g F (table covers %g-%g F)", ErrOutOfRange, substance, temperatureF, c.low, c.high)
	}
	return Properties{
		DensityLbFt3:       c.density.Predict(temperatureF),
		SpecificHeatBtuLbF: c.specificHeat.Predict(temperatureF),
		ViscosityLbFtH:     c.viscosity.Predict(temperatureF),
		ConductivityBtuHFt: c.conductivity.Predict(temperatureF),
	}, nil
}

// Substances lists the names the table can answer.
func (t *Table) Substances() []string {
	out := make([]string, 0, len(t.curves))
	for name := range t.curves {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultPoints is the built-in data set: liquid water and liquid acetone
// at 1 atm. A fresh map is returned on every call.
func DefaultPoints() map[string][]Point {
	return map[string][]Point{
		"water": {
			{40, Properties{62.42, 1.004, 3.74, 0.331}},
			{60, Properties{62.37, 1.000, 2.71, 0.341}},
			{80, Properties{62.22, 0.999, 2.09, 0.350}},
			{100, Properties{62.00, 0.998, 1.65, 0.358}},
			{120, Properties{61.71, 0.998, 1.35, 0.365}},
			{140, Properties{61.38, 0.999, 1.14, 0.370}},
			{160, Properties{61.00, 1.000, 0.970, 0.374}},
			{180, Properties{60.58, 1.002, 0.839, 0.377}},
			{200, Properties{60.12, 1.004, 0.738, 0.379}},
			{212, Properties{59.83, 1.007, 0.687, 0.380}},
		},
		"acetone": {
			{60, Properties{49.7, 0.514, 1.36, 0.093}},
			{100, Properties{48.6, 0.528, 1.18, 0.089}},
			{140, Properties{47.4, 0.542, 1.03, 0.085}},
			{180, Properties{46.0, 0.553, 0.94, 0.081}},
			{200, Properties{45.3, 0.557, 0.90, 0.080}},
		},
	}
}

// DefaultTable interpolates DefaultPoints.
func DefaultTable() *Table {
	t, err := NewTable(DefaultPoints())
	if err != nil {
		panic(err)
	}
	return t
}
