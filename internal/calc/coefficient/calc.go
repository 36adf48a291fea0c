// Package coefficient turns stream properties and passage geometry into film
// and overall heat-transfer coefficients.
package coefficient

import (
	"Thermex/internal/calc/calcerr"
	"Thermex/internal/calc/correlation"
	"Thermex/internal/fluid"
)

// DefaultFoulingAllowance in h·ft²·°F/Btu, applied to each surface.
const DefaultFoulingAllowance = 0.001

// MassVelocity returns W/a in lb/h·ft².
func MassVelocity(massFlow, area float64) (float64, error) {
	if massFlow <= 0 || area <= 0 {
		return 0, calcerr.Domain("mass velocity", "flow and area must be positive (W=%g, a=%g)", massFlow, area)
	}
	return massFlow / area, nil
}

// Film is the convective side of one passage.
type Film struct {
	MassVelocity float64 `json:"mass_velocity_lb_h_ft2"`
	Reynolds     float64 `json:"reynolds"`
	Prandtl      float64 `json:"prandtl"`
	Nusselt      float64 `json:"nusselt"`
	Coefficient  float64 `json:"h_btu_h_ft2_f"`
}

// FilmOf runs mass velocity → Re → Pr → Nu → h for a stream flowing through a
// passage of the given characteristic diameter (ft) and flow area (ft²).
func FilmOf(props fluid.Properties, diameter, massFlow, area float64) (Film, error) {
	g, err := MassVelocity(massFlow, area)
	if err != nil {
		return Film{}, err
	}
	re, err := correlation.Reynolds(diameter, g, props.ViscosityLbFtH)
	if err != nil {
		return Film{}, err
	}
	pr, err := correlation.Prandtl(props.SpecificHeatBtuLbF, props.ViscosityLbFtH, props.ConductivityBtuHFt)
	if err != nil {
		return Film{}, err
	}
	nu, err := correlation.Nusselt(re, pr)
	if err != nil {
		return Film{}, err
	}
	h, err := correlation.ConvectiveCoefficient(nu, props.ConductivityBtuHFt, diameter)
	if err != nil {
		return Film{}, err
	}
	return Film{MassVelocity: g, Reynolds: re, Prandtl: pr, Nusselt: nu, Coefficient: h}, nil
}

// CorrectedInside refers an inside film coefficient to the outside surface:
// h·(inner/outer).
func CorrectedInside(h, outer, inner float64) (float64, error) {
	if inner <= 0 || outer <= inner {
		return 0, calcerr.Domain("corrected inside coefficient", "outer diameter %g must exceed inner diameter %g > 0", outer, inner)
	}
	return h * inner / outer, nil
}

// CleanOverall combines two film coefficients as series resistances.
func CleanOverall(h1, h2 float64) (float64, error) {
	if h1 <= 0 || h2 <= 0 {
		return 0, calcerr.Domain("clean overall coefficient", "film coefficients must be positive (%g, %g)", h1, h2)
	}
	return h1 * h2 / (h1 + h2), nil
}

// Design adds the fouling allowance on both surfaces to a clean coefficient.
func Design(uClean, fouling float64) (float64, error) {
	if uClean <= 0 {
		return 0, calcerr.Domain("design coefficient", "clean coefficient must be positive, got %g", uClean)
	}
	if fouling < 0 {
		return 0, calcerr.Domain("design coefficient", "fouling allowance must not be negative, got %g", fouling)
	}
	return 1 / (1/uClean + 2*fouling), nil
}
