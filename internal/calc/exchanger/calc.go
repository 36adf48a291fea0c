// Package exchanger sizes a double-pipe or shell-and-tube heat exchanger.
//
// A run resolves geometry and stream properties, then passes through the
// stages in a fixed order: duty, driving temperature difference, film and
// overall coefficients, discretization into passes, pressure drop, and an
// effectiveness-NTU cross-check. Stages only add to the Result; the first
// failing stage aborts the run.
package exchanger

import (
	"context"
	"fmt"
	"math"
	"time"

	"Thermex/internal/calc/calcerr"
	"Thermex/internal/calc/catalog"
	"Thermex/internal/calc/coefficient"
	"Thermex/internal/calc/lmtd"
	"Thermex/internal/calc/ntu"
	"Thermex/internal/calc/pressure"
	"Thermex/internal/calc/sizing"
	"Thermex/internal/config"
	"Thermex/internal/fluid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats/scalar"
)

// Calculator carries the process-wide constants and property source. It
// holds no per-run state and is safe for concurrent use.
type Calculator struct {
	Constants  config.Constants
	Properties fluid.Provider
	Log        logrus.FieldLogger
}

func NewCalculator(c config.Constants, p fluid.Provider, log logrus.FieldLogger) *Calculator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Calculator{Constants: c, Properties: p, Log: log}
}

var defaultCalculator = NewCalculator(config.DefaultConstants(), fluid.DefaultTable(), nil)

// Default returns the calculator behind the package-level Calculate.
func Default() *Calculator { return defaultCalculator }

// Calculate sizes with the default constants and the built-in property table.
func Calculate(in Input) (Result, error) {
	return defaultCalculator.Calculate(context.Background(), in)
}

// passage is one side of the exchanger as the coefficient and pressure stages see it.
type passage struct {
	stream           *StreamState
	heatDiameter     float64
	frictionDiameter float64
	flowArea         float64
	velocityHeads    bool
}

func (c *Calculator) Calculate(ctx context.Context, in Input) (res Result, err error) {
	start := time.Now()
	kindLabel := "unknown"
	defer func() {
		observeRun(kindLabel, start, err)
		if err != nil {
			c.Log.WithFields(logrus.Fields{"name": in.Name, "kind": in.Kind, "nominal": in.Nominal}).WithError(err).Warn("sizing run failed")
		}
	}()

	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	if err := c.Constants.Validate(); err != nil {
		return Result{}, err
	}

	// Configuration.
	res.ID = uuid.NewString()
	res.Name = in.Name
	if res.Kind, err = catalog.ParseKind(in.Kind); err != nil {
		return Result{}, err
	}
	kindLabel = string(res.Kind)
	if res.Flow, err = lmtd.ParseFlow(in.Flow); err != nil {
		return Result{}, err
	}
	res.InnerSide = in.InnerSide
	if res.InnerSide == "" {
		res.InnerSide = "hot"
	}
	if res.Geometry, err = catalog.Resolve(res.Kind, in.Nominal, in.Gauge); err != nil {
		return Result{}, err
	}

	// Streams.
	if res.Hot, err = c.resolveStream(ctx, "hot", in.Hot); err != nil {
		return Result{}, err
	}
	if res.Cold, err = c.resolveStream(ctx, "cold", in.Cold); err != nil {
		return Result{}, err
	}
	if err = duty(&res); err != nil {
		return Result{}, err
	}

	// Driving temperature difference.
	temps := lmtd.Temperatures{HotIn: res.Hot.InletF, HotOut: res.Hot.OutletF, ColdIn: res.Cold.InletF, ColdOut: res.Cold.OutletF}
	if res.Driving, err = lmtd.Driving(res.Kind, res.Flow, temps); err != nil {
		return Result{}, fmt.Errorf("exchanger: driving difference: %w", err)
	}

	// Geometry of both passages.
	inner, outer, err := c.passages(&res, in.Arrangement)
	if err != nil {
		return Result{}, fmt.Errorf("exchanger: geometry: %w", err)
	}

	// Coefficients.
	if res.InnerFilm, err = coefficient.FilmOf(inner.stream.Properties, inner.heatDiameter, inner.stream.MassFlowLbH, inner.flowArea); err != nil {
		return Result{}, fmt.Errorf("exchanger: inner film: %w", err)
	}
	if res.OuterFilm, err = coefficient.FilmOf(outer.stream.Properties, outer.heatDiameter, outer.stream.MassFlowLbH, outer.flowArea); err != nil {
		return Result{}, fmt.Errorf("exchanger: outer film: %w", err)
	}
	if res.CorrectedInnerCoefficient, err = coefficient.CorrectedInside(res.InnerFilm.Coefficient, res.Geometry.OuterDiameter, res.Geometry.InnerDiameter); err != nil {
		return Result{}, fmt.Errorf("exchanger: coefficients: %w", err)
	}
	if res.CleanCoefficient, err = coefficient.CleanOverall(res.CorrectedInnerCoefficient, res.OuterFilm.Coefficient); err != nil {
		return Result{}, fmt.Errorf("exchanger: coefficients: %w", err)
	}
	res.FoulingAllowance = c.Constants.FoulingAllowance
	if in.FoulingAllowance != nil {
		res.FoulingAllowance = *in.FoulingAllowance
	}
	if res.DesignCoefficient, err = coefficient.Design(res.CleanCoefficient, res.FoulingAllowance); err != nil {
		return Result{}, fmt.Errorf("exchanger: coefficients: %w", err)
	}

	// Discretization.
	res.Sizing, err = sizing.Size(sizing.Input{
		Duty:              res.DutyBtuH,
		CleanCoefficient:  res.CleanCoefficient,
		DesignCoefficient: res.DesignCoefficient,
		DrivingDifference: res.Driving.Driving,
		LinearSurface:     res.LinearSurface,
		ArmLength:         c.Constants.ArmLengthFt,
		SegmentLength:     c.Constants.SegmentLengthFt,
	})
	if err != nil {
		return Result{}, fmt.Errorf("exchanger: sizing: %w", err)
	}

	// Pressure drop.
	if res.InnerPressure, err = pressure.Compute(side(inner, res.InnerFilm, res.Sizing)); err != nil {
		return Result{}, fmt.Errorf("exchanger: inner pressure drop: %w", err)
	}
	if res.OuterPressure, err = pressure.Compute(side(outer, res.OuterFilm, res.Sizing)); err != nil {
		return Result{}, fmt.Errorf("exchanger: outer pressure drop: %w", err)
	}

	// Cross-check.
	res.Check, err = ntu.CrossCheck(ntu.Input{
		Kind:              res.Kind,
		Flow:              res.Flow,
		HotCapacity:       res.Hot.Capacity,
		ColdCapacity:      res.Cold.Capacity,
		DesignCoefficient: res.DesignCoefficient,
		CorrectedArea:     res.Sizing.CorrectedAreaFt2,
		Duty:              res.DutyBtuH,
		DrivingDifference: res.Driving.Driving,
		HotIn:             res.Hot.InletF,
		ColdIn:            res.Cold.InletF,
		Tolerance:         c.Constants.Tolerance,
	})
	if err != nil {
		return Result{}, fmt.Errorf("exchanger: cross check: %w", err)
	}

	c.Log.WithFields(logrus.Fields{
		"id":            res.ID,
		"kind":          res.Kind,
		"nominal":       res.Geometry.Nominal,
		"duty_btu_h":    res.DutyBtuH,
		"driving_f":     res.Driving.Driving,
		"ud":            res.DesignCoefficient,
		"passes":        res.Sizing.Passes,
		"effectiveness": res.Check.Effectiveness,
		"agrees":        res.Check.Agrees,
	}).Info("sizing run complete")
	return res, nil
}

func (c *Calculator) resolveStream(ctx context.Context, label string, s Stream) (StreamState, error) {
	st := StreamState{
		Substance:   s.Substance,
		MassFlowLbH: s.MassFlowLbH,
		InletF:      s.InletF,
		OutletF:     s.OutletF,
		MeanF:       lmtd.MeanTemperature(s.InletF, s.OutletF),
	}
	if s.Properties != nil {
		if err := s.Properties.Validate(); err != nil {
			return StreamState{}, calcerr.Domain(label+" stream", "%v", err)
		}
		st.Properties = *s.Properties
		return st, nil
	}
	if c.Properties == nil {
		return StreamState{}, calcerr.Config(label+" stream", "no properties given for %q and no property source configured", s.Substance)
	}
	props, err := c.Properties.Lookup(ctx, s.Substance, st.MeanF)
	if err != nil {
		return StreamState{}, fmt.Errorf("exchanger: %s stream properties: %w", label, err)
	}
	c.Log.WithFields(logrus.Fields{"stream": label, "substance": s.Substance, "mean_f": st.MeanF}).Debug("properties resolved")
	st.Properties = props
	st.PropsLookedUp = true
	return st, nil
}

// duty computes Q from the cold stream when its flow is known, otherwise from
// the hot stream, and derives whichever flow is missing.
// balanceTolerance is the relative mismatch allowed between the hot and cold
// duties when both mass flows are given.
const balanceTolerance = 0.01

func duty(res *Result) error {
	hot, cold := &res.Hot, &res.Cold
	if hot.InletF <= hot.OutletF {
		return calcerr.Domain("duty", "hot stream must cool (%g -> %g F)", hot.InletF, hot.OutletF)
	}
	if cold.OutletF <= cold.InletF {
		return calcerr.Domain("duty", "cold stream must heat (%g -> %g F)", cold.InletF, cold.OutletF)
	}
	dth := hot.InletF - hot.OutletF
	dtc := cold.OutletF - cold.InletF
	switch {
	case cold.MassFlowLbH > 0:
		res.DutyBtuH = cold.MassFlowLbH * cold.Properties.SpecificHeatBtuLbF * dtc
		if hot.MassFlowLbH == 0 {
			hot.MassFlowLbH = res.DutyBtuH / (hot.Properties.SpecificHeatBtuLbF * dth)
			hot.FlowDerived = true
			break
		}
		qh := hot.MassFlowLbH * hot.Properties.SpecificHeatBtuLbF * dth
		if !scalar.EqualWithinRel(qh, res.DutyBtuH, balanceTolerance) {
			return calcerr.Domain("duty", "hot duty %.2f and cold duty %.2f Btu/h differ by more than %g%%",
				qh, res.DutyBtuH, balanceTolerance*100)
		}
	case hot.MassFlowLbH > 0:
		res.DutyBtuH = hot.MassFlowLbH * hot.Properties.SpecificHeatBtuLbF * dth
		cold.MassFlowLbH = res.DutyBtuH / (cold.Properties.SpecificHeatBtuLbF * dtc)
		cold.FlowDerived = true
	default:
		return calcerr.Domain("duty", "at least one stream needs a mass flow")
	}
	hot.Capacity = hot.MassFlowLbH * hot.Properties.SpecificHeatBtuLbF
	cold.Capacity = cold.MassFlowLbH * cold.Properties.SpecificHeatBtuLbF
	return nil
}

func (c *Calculator) passages(res *Result, arrangement string) (inner, outer passage, err error) {
	rec := res.Geometry
	inner = passage{heatDiameter: rec.InnerDiameter, frictionDiameter: rec.InnerDiameter}
	switch res.Kind {
	case catalog.DoublePipe:
		ann, err := catalog.AnnulusOf(rec)
		if err != nil {
			return passage{}, passage{}, err
		}
		res.Annulus = &ann
		res.InnerFlowAreaFt2 = rec.FlowArea
		res.LinearSurface = rec.LinearSurface
		outer = passage{heatDiameter: ann.HeatDiameter, frictionDiameter: ann.FrictionDiameter, flowArea: ann.FlowArea, velocityHeads: true}
	case catalog.ShellAndTube:
		if arrangement == "" {
			arrangement = string(catalog.Square)
		}
		arr, err := catalog.ParseArrangement(arrangement)
		if err != nil {
			return passage{}, passage{}, err
		}
		shell, err := catalog.ShellOf(rec, arr, c.Constants.ShellDiameterIn, c.Constants.BaffleSpacingIn)
		if err != nil {
			return passage{}, passage{}, err
		}
		res.Arrangement = arr
		res.Shell = &shell
		n := float64(c.Constants.TubesPerPass)
		res.InnerFlowAreaFt2 = n * rec.FlowArea
		res.LinearSurface = n * rec.LinearSurface
		outer = passage{heatDiameter: shell.EquivalentDiameter, frictionDiameter: shell.EquivalentDiameter, flowArea: shell.FlowArea, velocityHeads: true}
	default:
		return passage{}, passage{}, calcerr.Config("exchanger", "unrecognised exchanger kind %q", res.Kind)
	}
	inner.flowArea = res.InnerFlowAreaFt2
	if res.InnerSide == "cold" {
		inner.stream, outer.stream = &res.Cold, &res.Hot
	} else {
		inner.stream, outer.stream = &res.Hot, &res.Cold
	}
	return inner, outer, nil
}

func side(p passage, film coefficient.Film, sz sizing.Result) pressure.Side {
	return pressure.Side{
		MassVelocity:  film.MassVelocity,
		Density:       p.stream.Properties.DensityLbFt3,
		Viscosity:     p.stream.Properties.ViscosityLbFtH,
		Diameter:      p.frictionDiameter,
		Length:        sz.CorrectedLengthFt,
		Passes:        sz.Passes,
		VelocityHeads: p.velocityHeads,
	}
}

// Margin is the fractional excess area the discretization installed.
func (r Result) Margin() float64 {
	if r.Sizing.RequiredAreaFt2 <= 0 {
		return math.NaN()
	}
	return r.Sizing.CorrectedAreaFt2/r.Sizing.RequiredAreaFt2 - 1
}
