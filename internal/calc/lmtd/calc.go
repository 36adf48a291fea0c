// Package lmtd computes the driving temperature difference of an exchanger:
// the log-mean temperature difference and, for shell-and-tube units, the
// Bowman correction factor F.
package lmtd

import (
	"math"
	"strings"

	"Thermex/internal/calc/calcerr"
	"Thermex/internal/calc/catalog"
)

type Flow string

const (
	Parallel       Flow = "parallel"
	CounterCurrent Flow = "counter-current"
)

// ParseFlow accepts "parallel", "counter-current" and the spellings
// "counter current", "countercurrent" and "counterflow".
func ParseFlow(s string) (Flow, error) {
	switch strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(s, "-", " "))), " ") {
	case "parallel", "co current", "cocurrent":
		return Parallel, nil
	case "counter current", "countercurrent", "counterflow", "counter flow":
		return CounterCurrent, nil
	}
	return "", calcerr.Config("lmtd", "unrecognised flow arrangement %q", s)
}

// Temperatures are terminal temperatures in °F.
type Temperatures struct {
	HotIn   float64 `json:"hot_in_f"`
	HotOut  float64 `json:"hot_out_f"`
	ColdIn  float64 `json:"cold_in_f"`
	ColdOut float64 `json:"cold_out_f"`
}

// MeanTemperature is the rounded midpoint, used only to pick the temperature
// at which fluid properties are looked up.
func MeanTemperature(in, out float64) float64 {
	return math.Round((in + out) / 2)
}

// Terminal returns the two terminal differences for the arrangement.
func Terminal(flow Flow, t Temperatures) (dt1, dt2 float64, err error) {
	switch flow {
	case Parallel:
		return t.HotOut - t.ColdOut, t.HotIn - t.ColdIn, nil
	case CounterCurrent:
		return t.HotOut - t.ColdIn, t.HotIn - t.ColdOut, nil
	}
	return 0, 0, calcerr.Config("lmtd", "unrecognised flow arrangement %q", flow)
}

// LMTD returns (ΔT2-ΔT1)/ln(ΔT2/ΔT1).
func LMTD(flow Flow, t Temperatures) (float64, error) {
	dt1, dt2, err := Terminal(flow, t)
	if err != nil {
		return 0, err
	}
	if dt1 <= 0 || dt2 <= 0 {
		return 0, calcerr.Domain("lmtd", "temperature cross in %s flow (dT1=%g, dT2=%g)", flow, dt1, dt2)
	}
	if math.Abs(dt2-dt1) < 1e-12*math.Max(dt1, dt2) {
		return dt1, nil
	}
	return (dt2 - dt1) / math.Log(dt2/dt1), nil
}

// CorrectionFactor returns Bowman's F for one shell pass and an even number
// of tube passes, with R = (Th,in-Th,out)/(Tc,out-Tc,in) and
// S = (Tc,out-Tc,in)/(Th,in-Tc,in).
func CorrectionFactor(t Temperatures) (float64, error) {
	coldRise := t.ColdOut - t.ColdIn
	span := t.HotIn - t.ColdIn
	if coldRise <= 0 || span <= 0 {
		return 0, calcerr.Domain("correction factor", "cold rise %g and approach %g must be positive", coldRise, span)
	}
	r := (t.HotIn - t.HotOut) / coldRise
	s := coldRise / span
	root := math.Sqrt(r*r + 1)

	den := 2 - s*(r+1+root)
	num := 2 - s*(r+1-root)
	if den <= 0 || num <= 0 {
		return 0, calcerr.Domain("correction factor", "R=%.4g S=%.4g is infeasible for one shell pass", r, s)
	}
	logRatio := math.Log(num / den)

	var f float64
	if math.Abs(r-1) < 1e-9 {
		// limit of the general form as R -> 1
		if s >= 1 {
			return 0, calcerr.Domain("correction factor", "S=%.4g must be below 1", s)
		}
		f = (s * math.Sqrt2 / (1 - s)) / logRatio
	} else {
		inner := (1 - s) / (1 - r*s)
		if inner <= 0 {
			return 0, calcerr.Domain("correction factor", "R=%.4g S=%.4g is infeasible for one shell pass", r, s)
		}
		f = root * math.Log(inner) / ((r - 1) * logRatio)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, calcerr.Domain("correction factor", "R=%.4g S=%.4g gives no usable F", r, s)
	}
	return f, nil
}

// Result is the driving-force stage of a run.
type Result struct {
	LMTD             float64 `json:"lmtd_f"`
	CorrectionFactor float64 `json:"correction_factor"`
	Driving          float64 `json:"driving_f"`
}

// Driving returns LMTD·F, with F≡1 for double-pipe exchangers.
func Driving(kind catalog.Kind, flow Flow, t Temperatures) (Result, error) {
	lm, err := LMTD(flow, t)
	if err != nil {
		return Result{}, err
	}
	switch kind {
	case catalog.DoublePipe:
		return Result{LMTD: lm, CorrectionFactor: 1, Driving: lm}, nil
	case catalog.ShellAndTube:
		f, err := CorrectionFactor(t)
		if err != nil {
			return Result{}, err
		}
		return Result{LMTD: lm, CorrectionFactor: f, Driving: lm * f}, nil
	}
	return Result{}, calcerr.Config("lmtd", "unrecognised exchanger kind %q", kind)
}
