// Package correlation holds the dimensionless groups and friction/film
// correlations used on both sides of an exchanger. All functions are pure.
package correlation

import (
	"math"

	"Thermex/internal/calc/calcerr"
)

// MinReynolds is the lower edge of the first Nusselt band.
const MinReynolds = 0.4

type band struct {
	low, high float64
	coeff     float64
	exp       float64
}

// Bands are lower-inclusive and upper-exclusive.
var nusseltBands = []band{
	{0.4, 4, 0.989, 0.330},
	{4, 40, 0.911, 0.385},
	{40, 4000, 0.683, 0.466},
	{4000, 40000, 0.193, 0.618},
	{40000, math.Inf(1), 0.027, 0.805},
}

// Reynolds returns D·G/μ. Diameter in ft, mass velocity in lb/h·ft², viscosity in lb/ft·h.
func Reynolds(diameter, massVelocity, viscosity float64) (float64, error) {
	if diameter <= 0 || massVelocity <= 0 || viscosity <= 0 {
		return 0, calcerr.Domain("reynolds", "arguments must be positive (D=%g, G=%g, mu=%g)", diameter, massVelocity, viscosity)
	}
	return diameter * massVelocity / viscosity, nil
}

// Prandtl returns cp·μ/k.
func Prandtl(specificHeat, viscosity, conductivity float64) (float64, error) {
	if conductivity <= 0 {
		return 0, calcerr.Domain("prandtl", "conductivity must be positive, got %g", conductivity)
	}
	return specificHeat * viscosity / conductivity, nil
}

// Nusselt evaluates coeff·Re^exp·Pr^(1/3) for the band containing re.
func Nusselt(re, pr float64) (float64, error) {
	if re <= 0 {
		return 0, calcerr.Domain("nusselt", "Reynolds number must be positive, got %g", re)
	}
	if pr <= 0 {
		return 0, calcerr.Domain("nusselt", "Prandtl number must be positive, got %g", pr)
	}
	for _, b := range nusseltBands {
		if re >= b.low && re < b.high {
			return b.coeff * math.Pow(re, b.exp) * math.Cbrt(pr), nil
		}
	}
	return 0, calcerr.Domain("nusselt", "Reynolds number %g is below the lowest band (%g)", re, MinReynolds)
}

// FrictionFactor is 0.0035 + 0.264·Re^-0.42.
func FrictionFactor(re float64) (float64, error) {
	if re <= 0 {
		return 0, calcerr.Domain("friction factor", "Reynolds number must be positive, got %g", re)
	}
	return 0.0035 + 0.264*math.Pow(re, -0.42), nil
}

// ConvectiveCoefficient returns Nu·k/D in Btu/h·ft²·°F.
func ConvectiveCoefficient(nu, conductivity, diameter float64) (float64, error) {
	if diameter <= 0 {
		return 0, calcerr.Domain("convective coefficient", "diameter must be positive, got %g", diameter)
	}
	return nu * conductivity / diameter, nil
}
