// Package ntu rates an exchanger by the effectiveness-NTU method, independent
// of the LMTD path, so the two can be compared.
package ntu

import (
	"math"

	"Thermex/internal/calc/calcerr"
	"Thermex/internal/calc/catalog"
	"Thermex/internal/calc/lmtd"
	"gonum.org/v1/gonum/floats/scalar"
)

// balancedLimit is how close Cr must be to 1 for the counter-current limit.
const balancedLimit = 1e-9

// CapacityRate returns W·cp in Btu/h·°F.
func CapacityRate(massFlow, specificHeat float64) (float64, error) {
	if massFlow <= 0 || specificHeat <= 0 {
		return 0, calcerr.Domain("capacity rate", "flow and specific heat must be positive (W=%g, cp=%g)", massFlow, specificHeat)
	}
	return massFlow * specificHeat, nil
}

// CapacityRatio returns Cmin/Cmax, always in (0, 1].
func CapacityRatio(c1, c2 float64) (float64, error) {
	if c1 <= 0 || c2 <= 0 {
		return 0, calcerr.Domain("capacity ratio", "capacity rates must be positive (%g, %g)", c1, c2)
	}
	return math.Min(c1, c2) / math.Max(c1, c2), nil
}

func NTU(u, area, cMin float64) (float64, error) {
	if cMin <= 0 || u < 0 || area < 0 {
		return 0, calcerr.Domain("ntu", "invalid arguments (U=%g, A=%g, Cmin=%g)", u, area, cMin)
	}
	return u * area / cMin, nil
}

// Effectiveness for a double-pipe arrangement.
func Effectiveness(flow lmtd.Flow, ntu, cr float64) (float64, error) {
	if ntu < 0 || cr < 0 || cr > 1 {
		return 0, calcerr.Domain("effectiveness", "need NTU >= 0 and 0 <= Cr <= 1 (NTU=%g, Cr=%g)", ntu, cr)
	}
	switch flow {
	case lmtd.Parallel:
		return (1 - math.Exp(-ntu*(1+cr))) / (1 + cr), nil
	case lmtd.CounterCurrent:
		if math.Abs(1-cr) < balancedLimit {
			return ntu / (1 + ntu), nil
		}
		e := math.Exp(-ntu * (1 - cr))
		return (1 - e) / (1 - cr*e), nil
	default:
		return 0, calcerr.Config("effectiveness", "unknown flow arrangement %q", flow)
	}
}

// ShellEffectiveness is the one shell pass, even tube pass relation that
// Bowman's correction factor is derived from.
func ShellEffectiveness(ntu, cr float64) (float64, error) {
	if ntu < 0 || cr < 0 || cr > 1 {
		return 0, calcerr.Domain("shell effectiveness", "need NTU >= 0 and 0 <= Cr <= 1 (NTU=%g, Cr=%g)", ntu, cr)
	}
	if ntu == 0 {
		return 0, nil
	}
	s := math.Sqrt(1 + cr*cr)
	e := math.Exp(-ntu * s)
	return 2 / (1 + cr + s*(1+e)/(1-e)), nil
}

// Input carries what the cross-check needs from the sized exchanger.
type Input struct {
	Kind              catalog.Kind
	Flow              lmtd.Flow
	HotCapacity       float64
	ColdCapacity      float64
	DesignCoefficient float64
	CorrectedArea     float64
	Duty              float64
	DrivingDifference float64
	HotIn             float64
	ColdIn            float64
	Tolerance         float64
}

type Result struct {
	MinCapacity   float64 `json:"c_min"`
	MaxCapacity   float64 `json:"c_max"`
	CapacityRatio float64 `json:"capacity_ratio"`
	NTU           float64 `json:"ntu"`
	Effectiveness float64 `json:"effectiveness"`

	MaxDuty             float64 `json:"max_duty_btu_h"`
	ActualEffectiveness float64 `json:"actual_effectiveness"`
	// RatingNTU uses the U·A the duty actually requires, Q/ΔT.
	RatingNTU           float64 `json:"rating_ntu"`
	RatingEffectiveness float64 `json:"rating_effectiveness"`
	Agrees              bool    `json:"agrees"`
}

// CrossCheck rates the installed exchanger and, separately, the duty it must
// deliver. RatingEffectiveness and ActualEffectiveness agree when the LMTD
// path is consistent.
func CrossCheck(in Input) (Result, error) {
	cr, err := CapacityRatio(in.HotCapacity, in.ColdCapacity)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		MinCapacity:   math.Min(in.HotCapacity, in.ColdCapacity),
		MaxCapacity:   math.Max(in.HotCapacity, in.ColdCapacity),
		CapacityRatio: cr,
	}
	if res.NTU, err = NTU(in.DesignCoefficient, in.CorrectedArea, res.MinCapacity); err != nil {
		return Result{}, err
	}
	if res.Effectiveness, err = Effectiveness(in.Flow, res.NTU, cr); err != nil {
		return Result{}, err
	}

	if in.HotIn <= in.ColdIn {
		return Result{}, calcerr.Domain("cross check", "hot inlet %g F is not above cold inlet %g F", in.HotIn, in.ColdIn)
	}
	if in.DrivingDifference <= 0 {
		return Result{}, calcerr.Domain("cross check", "driving difference must be positive, got %g", in.DrivingDifference)
	}
	res.MaxDuty = res.MinCapacity * (in.HotIn - in.ColdIn)
	res.ActualEffectiveness = in.Duty / res.MaxDuty
	if res.RatingNTU, err = NTU(in.Duty/in.DrivingDifference, 1, res.MinCapacity); err != nil {
		return Result{}, err
	}
	if in.Kind == catalog.ShellAndTube {
		res.RatingEffectiveness, err = ShellEffectiveness(res.RatingNTU, cr)
	} else {
		res.RatingEffectiveness, err = Effectiveness(in.Flow, res.RatingNTU, cr)
	}
	if err != nil {
		return Result{}, err
	}
	tol := in.Tolerance
	if tol <= 0 {
		tol = 1e-6
	}
	res.Agrees = scalar.EqualWithinAbsOrRel(res.RatingEffectiveness, res.ActualEffectiveness, tol, tol)
	return res, nil
}
