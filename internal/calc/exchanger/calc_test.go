package exchanger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"Thermex/internal/calc/calcerr"
	"Thermex/internal/calc/catalog"
	"Thermex/internal/calc/lmtd"
	"Thermex/internal/config"
	"Thermex/internal/fluid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	water   = fluid.Properties{DensityLbFt3: 62.0, SpecificHeatBtuLbF: 0.998, ViscosityLbFtH: 1.75, ConductivityBtuHFt: 0.363}
	acetone = fluid.Properties{DensityLbFt3: 45.499, SpecificHeatBtuLbF: 0.55488, ViscosityLbFtH: 0.9148, ConductivityBtuHFt: 0.080516}
)

func doublePipeCase() Input {
	w, a := water, acetone
	return Input{
		Name:    "acetone cooler",
		Kind:    "double pipe",
		Flow:    "counter-current",
		Nominal: "3*2",
		Hot:     Stream{Substance: "acetone", InletF: 199.868, OutletF: 176.504, Properties: &a},
		Cold:    Stream{Substance: "water", MassFlowLbH: 169.999, InletF: 81.986, OutletF: 109.112, Properties: &w},
	}
}

func shellAndTubeCase() Input {
	w := fluid.Properties{DensityLbFt3: 62.38, SpecificHeatBtuLbF: 1.0097, ViscosityLbFtH: 1.7119, ConductivityBtuHFt: 0.3616}
	a := fluid.Properties{DensityLbFt3: 0.13, SpecificHeatBtuLbF: 0.3438, ViscosityLbFtH: 0.0178, ConductivityBtuHFt: 0.087}
	return Input{
		Kind:        "pipe and shell",
		Flow:        "counter-current",
		Nominal:     "1",
		Gauge:       13,
		Arrangement: "square",
		Hot:         Stream{Substance: "acetone", InletF: 163.868, OutletF: 140.198, Properties: &a},
		Cold:        Stream{Substance: "water", MassFlowLbH: 422.4975, InletF: 81.968, OutletF: 119.112, Properties: &w},
	}
}

func newTestCalculator(p fluid.Provider) (*Calculator, *test.Hook) {
	log, hook := test.NewNullLogger()
	return NewCalculator(config.DefaultConstants(), p, log), hook
}

func TestCalculateDoublePipe(t *testing.T) {
	calc, hook := newTestCalculator(nil)
	res, err := calc.Calculate(context.Background(), doublePipeCase())
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, catalog.DoublePipe, res.Kind)
	assert.Equal(t, lmtd.CounterCurrent, res.Flow)
	assert.Equal(t, "hot", res.InnerSide)
	require.NotNil(t, res.Annulus)
	assert.Nil(t, res.Shell)

	assert.InDelta(t, 4602.170, res.DutyBtuH, 1e-3)
	assert.InDelta(t, 354.990, res.Hot.MassFlowLbH, 1e-3)
	assert.True(t, res.Hot.FlowDerived)
	assert.Equal(t, 96.0, res.Cold.MeanF)

	assert.InDelta(t, 92.6243, res.Driving.LMTD, 1e-3)
	assert.Equal(t, 1.0, res.Driving.CorrectionFactor)
	assert.InDelta(t, 623.624, res.OuterFilm.Reynolds, 1e-2)
	assert.InDelta(t, 2873.209, res.InnerFilm.Reynolds, 1e-2)
	assert.InDelta(t, 20.9437, res.CorrectedInnerCoefficient, 1e-3)
	assert.InDelta(t, 15.7793, res.CleanCoefficient, 1e-3)
	assert.InDelta(t, 15.2965, res.DesignCoefficient, 1e-3)

	assert.InDelta(t, 3.2482, res.Sizing.RequiredAreaFt2, 1e-3)
	assert.InDelta(t, 5.2222, res.Sizing.RequiredLengthFt, 1e-3)
	assert.Equal(t, 1, res.Sizing.Passes)
	assert.Equal(t, 40.0, res.Sizing.CorrectedLengthFt)
	assert.InDelta(t, 24.88, res.Sizing.CorrectedAreaFt2, 1e-9)
	assert.LessOrEqual(t, res.Sizing.CorrectedDesignCoefficient, res.DesignCoefficient)
	assert.InDelta(t, 0.43737, res.Sizing.ImpliedFoulingFactor, 1e-4)
	assert.Greater(t, res.Margin(), 0.0)

	assert.InDelta(t, 0.00074741, res.OuterPressure.PressureDropPSI, 1e-7)
	assert.InDelta(t, 0.00050595, res.InnerPressure.PressureDropPSI, 1e-7)
	assert.Positive(t, res.OuterPressure.EntranceExitFt)
	assert.Zero(t, res.InnerPressure.EntranceExitFt)

	assert.InDelta(t, 0.86131, res.Check.CapacityRatio, 1e-4)
	assert.InDelta(t, 2.24319, res.Check.NTU, 1e-3)
	assert.InDelta(t, 0.72462, res.Check.Effectiveness, 1e-4)
	assert.Greater(t, res.Check.Effectiveness, 0.0)
	assert.Less(t, res.Check.Effectiveness, 1.0)
	assert.InDelta(t, res.Check.ActualEffectiveness, res.Check.RatingEffectiveness, 1e-6)
	assert.True(t, res.Check.Agrees)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, 1, hook.LastEntry().Data["passes"])
}

func TestCalculateParallelFlow(t *testing.T) {
	in := doublePipeCase()
	in.Flow = "parallel"
	res, err := Calculate(in)
	require.NoError(t, err)
	assert.InDelta(t, 90.2965, res.Driving.LMTD, 1e-3)
	assert.InDelta(t, 0.52900, res.Check.Effectiveness, 1e-4)
	assert.True(t, res.Check.Agrees)
}

func TestCalculateShellAndTube(t *testing.T) {
	calc, _ := newTestCalculator(nil)
	res, err := calc.Calculate(context.Background(), shellAndTubeCase())
	require.NoError(t, err)

	assert.Equal(t, catalog.ShellAndTube, res.Kind)
	assert.Equal(t, catalog.Square, res.Arrangement)
	require.NotNil(t, res.Shell)
	assert.InDelta(t, 0.25, res.Shell.ClearanceIn, 1e-9)
	assert.InDelta(t, 1.0/12, res.Shell.FlowArea, 1e-9)

	assert.InDelta(t, 15845.47, res.DutyBtuH, 1e-2)
	assert.InDelta(t, 51.1978, res.Driving.LMTD, 1e-3)
	assert.InDelta(t, 0.94113, res.Driving.CorrectionFactor, 1e-4)
	assert.InDelta(t, 103231, res.InnerFilm.Reynolds, 1)
	assert.InDelta(t, 244.193, res.OuterFilm.Reynolds, 1e-2)
	assert.InDelta(t, 43.1076, res.CleanCoefficient, 1e-3)
	assert.InDelta(t, 39.6860, res.DesignCoefficient, 1e-3)
	assert.InDelta(t, 8.2864, res.Sizing.RequiredAreaFt2, 1e-3)
	assert.Equal(t, 1, res.Sizing.Passes)
	assert.InDelta(t, 20*0.2618*40, res.Sizing.CorrectedAreaFt2, 1e-9)
	assert.InDelta(t, 0.62510, res.InnerPressure.PressureDropPSI, 1e-4)

	assert.InDelta(t, 0.453529, res.Check.ActualEffectiveness, 1e-5)
	assert.True(t, res.Check.Agrees)
	assert.LessOrEqual(t, res.Check.Effectiveness, 1.0)
}

func TestCalculateWithPropertyProvider(t *testing.T) {
	in := doublePipeCase()
	in.Hot.Properties, in.Cold.Properties = nil, nil
	in.Cold.MassFlowLbH = 0
	in.Hot.MassFlowLbH = 350

	calc, _ := newTestCalculator(fluid.DefaultTable())
	res, err := calc.Calculate(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.Hot.PropsLookedUp)
	assert.True(t, res.Cold.PropsLookedUp)
	assert.True(t, res.Cold.FlowDerived)
	assert.Equal(t, 188.0, res.Hot.MeanF)
	assert.InDelta(t, 350*res.Hot.Properties.SpecificHeatBtuLbF*(199.868-176.504), res.DutyBtuH, 1e-9)
	assert.Positive(t, res.Sizing.Passes)
	assert.True(t, res.Check.Agrees)
}

func TestCalculateBothFlowsGiven(t *testing.T) {
	calc, _ := newTestCalculator(nil)
	base, err := calc.Calculate(context.Background(), doublePipeCase())
	require.NoError(t, err)
	require.True(t, base.Hot.FlowDerived)

	in := doublePipeCase()
	in.Hot.MassFlowLbH = base.Hot.MassFlowLbH * 1.005
	res, err := calc.Calculate(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, res.Hot.FlowDerived)
	assert.False(t, res.Cold.FlowDerived)
	assert.InDelta(t, base.DutyBtuH, res.DutyBtuH, 1e-9)

	in.Hot.MassFlowLbH = base.Hot.MassFlowLbH * 1.05
	_, err = calc.Calculate(context.Background(), in)
	assert.ErrorIs(t, err, calcerr.ErrDomain)
	assert.ErrorContains(t, err, "hot duty")
}

func TestCalculateErrors(t *testing.T) {
	calc, _ := newTestCalculator(nil)
	cases := []struct {
		name   string
		mutate func(*Input)
		kind   error
	}{
		{"water leaves hotter than acetone enters", func(in *Input) { in.Cold.InletF, in.Cold.OutletF = 170, 260 }, calcerr.ErrDomain},
		{"hot stream heats", func(in *Input) { in.Hot.InletF, in.Hot.OutletF = 150, 190 }, calcerr.ErrDomain},
		{"no flows", func(in *Input) { in.Cold.MassFlowLbH = 0 }, calcerr.ErrDomain},
		{"unbalanced duties", func(in *Input) { in.Hot.MassFlowLbH = 1000 }, calcerr.ErrDomain},
		{"negative flow", func(in *Input) { in.Cold.MassFlowLbH = -1 }, calcerr.ErrDomain},
		{"missing nominal", func(in *Input) { in.Nominal = "" }, calcerr.ErrDomain},
		{"bad inner side", func(in *Input) { in.InnerSide = "left" }, calcerr.ErrDomain},
		{"unknown flow", func(in *Input) { in.Flow = "crossflow" }, calcerr.ErrConfig},
		{"unknown kind", func(in *Input) { in.Kind = "plate" }, calcerr.ErrConfig},
		{"unknown nominal", func(in *Input) { in.Nominal = "6*4" }, calcerr.ErrLookup},
		{"no property source", func(in *Input) { in.Hot.Properties = nil }, calcerr.ErrConfig},
		{"bad inline properties", func(in *Input) { in.Hot.Properties = &fluid.Properties{DensityLbFt3: 1} }, calcerr.ErrDomain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := doublePipeCase()
			tc.mutate(&in)
			_, err := calc.Calculate(context.Background(), in)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestCalculateShellAndTubeLookupFailure(t *testing.T) {
	in := shellAndTubeCase()
	in.Nominal, in.Gauge = "3/4 in", 20
	_, err := Calculate(in)
	assert.ErrorIs(t, err, calcerr.ErrLookup)

	in = shellAndTubeCase()
	in.Arrangement = "hexagonal"
	_, err = Calculate(in)
	assert.ErrorIs(t, err, calcerr.ErrConfig)
}

type failingProvider struct{ err error }

func (f failingProvider) Lookup(context.Context, string, float64) (fluid.Properties, error) {
	return fluid.Properties{}, f.err
}

func TestCalculatePropagatesProviderFailure(t *testing.T) {
	in := doublePipeCase()
	in.Cold.Properties = nil
	calc, hook := newTestCalculator(failingProvider{fluid.ErrUnavailable})
	_, err := calc.Calculate(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fluid.ErrUnavailable))
	assert.False(t, calcerr.IsCalculation(err))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestFoulingOverride(t *testing.T) {
	in := doublePipeCase()
	zero := 0.0
	in.FoulingAllowance = &zero
	res, err := Calculate(in)
	require.NoError(t, err)
	assert.InDelta(t, res.CleanCoefficient, res.DesignCoefficient, 1e-9)
}

func TestConcurrentRunsAreIndependent(t *testing.T) {
	want, err := Calculate(doublePipeCase())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Result, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := doublePipeCase()
			if i%2 == 1 {
				in = shellAndTubeCase()
			}
			results[i], errs[i] = Calculate(in)
		}(i)
	}
	wg.Wait()
	for i, res := range results {
		require.NoError(t, errs[i])
		if i%2 == 0 {
			assert.Equal(t, want.Sizing, res.Sizing)
			assert.NotEqual(t, want.ID, res.ID)
		}
	}
}
