// Package recommend rates one duty against every catalog entry of the chosen
// exchanger kind and ranks the geometries that satisfy it.
//
// Each candidate is an independent sizing run; nothing is fed back into a run.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"Thermex/internal/calc/batch"
	"Thermex/internal/calc/catalog"
	"Thermex/internal/calc/exchanger"
)

type Input struct {
	Case exchanger.Input `json:"case" yaml:"case"`
	// Limits; zero means no limit.
	MaxPasses          int     `json:"max_passes,omitempty" yaml:"max_passes,omitempty"`
	MaxPressureDropPSI float64 `json:"max_pressure_drop_psi,omitempty" yaml:"max_pressure_drop_psi,omitempty"`
	Workers            int     `json:"workers,omitempty" yaml:"workers,omitempty"`
}

type Candidate struct {
	Nominal          string  `json:"nominal"`
	Gauge            int     `json:"gauge,omitempty"`
	Passes           int     `json:"passes,omitempty"`
	CorrectedAreaFt2 float64 `json:"corrected_area_ft2,omitempty"`
	Margin           float64 `json:"margin,omitempty"`
	InnerDropPSI     float64 `json:"inner_drop_psi,omitempty"`
	OuterDropPSI     float64 `json:"outer_drop_psi,omitempty"`
	Effectiveness    float64 `json:"effectiveness,omitempty"`
	Feasible         bool    `json:"feasible"`
	Reason           string  `json:"reason,omitempty"`
}

type Result struct {
	Kind catalog.Kind `json:"kind"`
	// Best is the first feasible candidate, nil if there is none.
	Best       *Candidate  `json:"best,omitempty"`
	Candidates []Candidate `json:"candidates"`
}

// Recommend runs the case once per catalog entry. Feasible candidates come
// first, ordered by installed area, then by the larger side pressure drop.
func Recommend(ctx context.Context, calc *exchanger.Calculator, in Input) (Result, error) {
	kind, err := catalog.ParseKind(in.Case.Kind)
	if err != nil {
		return Result{}, err
	}

	var items []exchanger.Input
	switch kind {
	case catalog.DoublePipe:
		for _, code := range catalog.DoublePipeCodes() {
			c := in.Case
			c.Nominal, c.Gauge = code, 0
			items = append(items, c)
		}
	case catalog.ShellAndTube:
		for _, e := range catalog.TubeEntries() {
			c := in.Case
			c.Nominal, c.Gauge = e.Nominal, e.Gauge
			items = append(items, c)
		}
	}
	for i := range items {
		items[i].Name = fmt.Sprintf("%s/%s", in.Case.Name, candidateName(items[i]))
	}

	runs, err := batch.Run(ctx, calc, batch.Input{Items: items, Workers: in.Workers})
	if err != nil {
		return Result{}, err
	}

	out := Result{Kind: kind, Candidates: make([]Candidate, len(items))}
	for i, it := range runs.Results {
		c := Candidate{Nominal: items[i].Nominal, Gauge: items[i].Gauge}
		if it.Result == nil {
			c.Reason = it.Error
			out.Candidates[i] = c
			continue
		}
		r := it.Result
		c.Passes = r.Sizing.Passes
		c.CorrectedAreaFt2 = r.Sizing.CorrectedAreaFt2
		c.Margin = r.Margin()
		c.InnerDropPSI = r.InnerPressure.PressureDropPSI
		c.OuterDropPSI = r.OuterPressure.PressureDropPSI
		c.Effectiveness = r.Check.Effectiveness
		c.Feasible = true
		switch {
		case in.MaxPasses > 0 && c.Passes > in.MaxPasses:
			c.Feasible, c.Reason = false, fmt.Sprintf("%d passes exceeds limit of %d", c.Passes, in.MaxPasses)
		case in.MaxPressureDropPSI > 0 && maxDrop(c) > in.MaxPressureDropPSI:
			c.Feasible, c.Reason = false, fmt.Sprintf("pressure drop %.4g psi exceeds limit of %.4g psi", maxDrop(c), in.MaxPressureDropPSI)
		}
		out.Candidates[i] = c
	}

	sort.SliceStable(out.Candidates, func(i, j int) bool {
		a, b := out.Candidates[i], out.Candidates[j]
		if a.Feasible != b.Feasible {
			return a.Feasible
		}
		if a.CorrectedAreaFt2 != b.CorrectedAreaFt2 {
			return a.CorrectedAreaFt2 < b.CorrectedAreaFt2
		}
		return maxDrop(a) < maxDrop(b)
	})
	if len(out.Candidates) > 0 && out.Candidates[0].Feasible {
		best := out.Candidates[0]
		out.Best = &best
	}
	return out, nil
}

func candidateName(in exchanger.Input) string {
	if in.Gauge > 0 {
		return fmt.Sprintf("%s BWG %d", in.Nominal, in.Gauge)
	}
	return in.Nominal
}

func maxDrop(c Candidate) float64 {
	if c.InnerDropPSI > c.OuterDropPSI {
		return c.InnerDropPSI
	}
	return c.OuterDropPSI
}
