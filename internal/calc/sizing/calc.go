// Package sizing discretizes a required heat-transfer area into whole passes
// of catalog hardware and reports the margin that rounding leaves behind.
//
// Discretization is applied once. The corrected figures are reported, never
// fed back into geometry selection.
package sizing

import (
	"math"

	"Thermex/internal/calc/calcerr"
)

// Defaults for folded double-pipe hardware, in ft.
const (
	DefaultArmLength     = 20.0
	DefaultSegmentLength = 40.0
)

func RequiredArea(duty, uDesign, deltaT float64) (float64, error) {
	if duty <= 0 || uDesign <= 0 || deltaT <= 0 {
		return 0, calcerr.Domain("required area", "duty, coefficient and driving difference must be positive (Q=%g, U=%g, dT=%g)", duty, uDesign, deltaT)
	}
	return duty / (uDesign * deltaT), nil
}

func RequiredLength(area, linearSurface float64) (float64, error) {
	if linearSurface <= 0 {
		return 0, calcerr.Domain("required length", "linear surface must be positive, got %g", linearSurface)
	}
	return area / linearSurface, nil
}

// PassCount rounds a length up to whole passes of two arms each.
func PassCount(length, armLength float64) (int, error) {
	if length <= 0 || armLength <= 0 {
		return 0, calcerr.Domain("pass count", "length and arm length must be positive (L=%g, arm=%g)", length, armLength)
	}
	return int(math.Ceil(length / (2 * armLength))), nil
}

func CorrectedLength(passes int, segmentLength float64) float64 {
	return float64(passes) * segmentLength
}

func CorrectedArea(length, linearSurface float64) float64 {
	return length * linearSurface
}

func CorrectedDesignCoefficient(duty, correctedArea, deltaT float64) (float64, error) {
	if correctedArea <= 0 || deltaT <= 0 {
		return 0, calcerr.Domain("corrected design coefficient", "area and driving difference must be positive (A=%g, dT=%g)", correctedArea, deltaT)
	}
	return duty / (correctedArea * deltaT), nil
}

// ImpliedFoulingFactor is the total fouling resistance the installed
// geometry can absorb: (Uc-Udc)/(Uc·Udc).
func ImpliedFoulingFactor(uClean, uCorrected float64) (float64, error) {
	if uClean <= 0 || uCorrected <= 0 {
		return 0, calcerr.Domain("implied fouling factor", "coefficients must be positive (Uc=%g, Udc=%g)", uClean, uCorrected)
	}
	return (uClean - uCorrected) / (uClean * uCorrected), nil
}

type Input struct {
	Duty              float64 `json:"duty_btu_h"`
	CleanCoefficient  float64 `json:"clean_coefficient"`
	DesignCoefficient float64 `json:"design_coefficient"`
	DrivingDifference float64 `json:"driving_difference_f"`
	LinearSurface     float64 `json:"linear_surface_ft2_ft"`
	ArmLength         float64 `json:"arm_length_ft"`
	SegmentLength     float64 `json:"segment_length_ft"`
}

type Result struct {
	RequiredAreaFt2            float64 `json:"required_area_ft2"`
	RequiredLengthFt           float64 `json:"required_length_ft"`
	Passes                     int     `json:"passes"`
	CorrectedLengthFt          float64 `json:"corrected_length_ft"`
	CorrectedAreaFt2           float64 `json:"corrected_area_ft2"`
	CorrectedDesignCoefficient float64 `json:"corrected_design_coefficient"`
	ImpliedFoulingFactor       float64 `json:"implied_fouling_factor"`
}

// Size runs area → length → passes → corrected figures. Zero arm or segment
// lengths take the defaults.
func Size(in Input) (Result, error) {
	arm, segment := in.ArmLength, in.SegmentLength
	if arm == 0 {
		arm = DefaultArmLength
	}
	if segment == 0 {
		segment = DefaultSegmentLength
	}
	if segment < 2*arm {
		return Result{}, calcerr.Config("sizing", "segment length %g ft is shorter than two arms of %g ft", segment, arm)
	}

	area, err := RequiredArea(in.Duty, in.DesignCoefficient, in.DrivingDifference)
	if err != nil {
		return Result{}, err
	}
	length, err := RequiredLength(area, in.LinearSurface)
	if err != nil {
		return Result{}, err
	}
	passes, err := PassCount(length, arm)
	if err != nil {
		return Result{}, err
	}
	lc := CorrectedLength(passes, segment)
	ac := CorrectedArea(lc, in.LinearSurface)
	udc, err := CorrectedDesignCoefficient(in.Duty, ac, in.DrivingDifference)
	if err != nil {
		return Result{}, err
	}
	rdc, err := ImpliedFoulingFactor(in.CleanCoefficient, udc)
	if err != nil {
		return Result{}, err
	}
	return Result{
		RequiredAreaFt2:            area,
		RequiredLengthFt:           length,
		Passes:                     passes,
		CorrectedLengthFt:          lc,
		CorrectedAreaFt2:           ac,
		CorrectedDesignCoefficient: udc,
		ImpliedFoulingFactor:       rdc,
	}, nil
}
