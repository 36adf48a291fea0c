// Package pressure computes frictional and velocity-head pressure drop for
// one side of an exchanger.
package pressure

import (
	"Thermex/internal/calc/calcerr"
	"Thermex/internal/calc/correlation"
)

const (
	// GravityFtH2 is g in ft/h², the unit factor of the Fanning form.
	GravityFtH2 = 4.18e8
	// GravityFtS2 is g in ft/s², used for velocity heads.
	GravityFtS2         = 32.2
	SecondsPerHour      = 3600.0
	SquareInchesPerFoot = 144.0
)

// FanningHead returns the frictional head loss in ft of fluid:
// 4·f·G²·L / (2·g·ρ²·D).
func FanningHead(f, massVelocity, length, density, diameter float64) (float64, error) {
	if density <= 0 || diameter <= 0 {
		return 0, calcerr.Domain("fanning head", "density and diameter must be positive (rho=%g, D=%g)", density, diameter)
	}
	return 4 * f * massVelocity * massVelocity * length / (2 * GravityFtH2 * density * density * diameter), nil
}

// Velocity returns the linear velocity in ft/s for a mass velocity in lb/h·ft².
func Velocity(massVelocity, density float64) float64 {
	return massVelocity / (SecondsPerHour * density)
}

// EntranceExitHead is one velocity head per pass, in ft of fluid.
func EntranceExitHead(velocity float64, passes int) float64 {
	return float64(passes) * velocity * velocity / (2 * GravityFtS2)
}

// HeadToPSI converts ft of fluid to lb/in².
func HeadToPSI(head, density float64) float64 {
	return head * density / SquareInchesPerFoot
}

// Side describes one flow passage for pressure drop.
type Side struct {
	MassVelocity float64 // lb/h·ft²
	Density      float64 // lb/ft³
	Viscosity    float64 // lb/ft·h
	// Diameter is the friction diameter, D2-D1 for an annulus.
	Diameter float64
	Length   float64
	Passes   int
	// VelocityHeads adds one entrance/exit head per pass.
	VelocityHeads bool
}

type Result struct {
	Reynolds        float64 `json:"reynolds"`
	FrictionFactor  float64 `json:"friction_factor"`
	FrictionHeadFt  float64 `json:"friction_head_ft"`
	VelocityFtS     float64 `json:"velocity_ft_s"`
	EntranceExitFt  float64 `json:"entrance_exit_head_ft"`
	PressureDropPSI float64 `json:"pressure_drop_psi"`
}

func Compute(s Side) (Result, error) {
	if s.Length <= 0 {
		return Result{}, calcerr.Domain("pressure drop", "length must be positive, got %g", s.Length)
	}
	re, err := correlation.Reynolds(s.Diameter, s.MassVelocity, s.Viscosity)
	if err != nil {
		return Result{}, err
	}
	f, err := correlation.FrictionFactor(re)
	if err != nil {
		return Result{}, err
	}
	head, err := FanningHead(f, s.MassVelocity, s.Length, s.Density, s.Diameter)
	if err != nil {
		return Result{}, err
	}
	res := Result{Reynolds: re, FrictionFactor: f, FrictionHeadFt: head}
	if s.VelocityHeads {
		res.VelocityFtS = Velocity(s.MassVelocity, s.Density)
		res.EntranceExitFt = EntranceExitHead(res.VelocityFtS, s.Passes)
	}
	res.PressureDropPSI = HeadToPSI(res.FrictionHeadFt+res.EntranceExitFt, s.Density)
	return res, nil
}
