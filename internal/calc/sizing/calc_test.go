package sizing

import (
	"testing"

	"Thermex/internal/calc/calcerr"
	"Thermex/internal/calc/coefficient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeDoublePipe(t *testing.T) {
	res, err := Size(Input{
		Duty:              4602.170088,
		CleanCoefficient:  15.779256,
		DesignCoefficient: 15.296520,
		DrivingDifference: 92.624267,
		LinearSurface:     0.622,
	})
	require.NoError(t, err)
	assert.InDelta(t, 3.2482, res.RequiredAreaFt2, 1e-3)
	assert.InDelta(t, 5.2222, res.RequiredLengthFt, 1e-3)
	assert.Equal(t, 1, res.Passes)
	assert.Equal(t, 40.0, res.CorrectedLengthFt)
	assert.InDelta(t, 24.88, res.CorrectedAreaFt2, 1e-9)
	assert.InDelta(t, 1.99704, res.CorrectedDesignCoefficient, 1e-4)
	assert.InDelta(t, 0.43737, res.ImpliedFoulingFactor, 1e-4)
}

func TestPassCount(t *testing.T) {
	for _, tc := range []struct {
		length float64
		want   int
	}{
		{0.1, 1}, {40, 1}, {40.0001, 2}, {80, 2}, {121, 4},
	} {
		got, err := PassCount(tc.length, DefaultArmLength)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "length %g", tc.length)
	}
	_, err := PassCount(0, DefaultArmLength)
	assert.ErrorIs(t, err, calcerr.ErrDomain)
}

// Rounding up to whole passes only adds area, so the delivered coefficient
// drops and the fouling margin grows.
func TestSizeMargins(t *testing.T) {
	for _, duty := range []float64{500, 4602, 25000, 180000, 1e6} {
		for _, uc := range []float64{5, 15.8, 120} {
			ud, err := coefficient.Design(uc, coefficient.DefaultFoulingAllowance)
			require.NoError(t, err)
			res, err := Size(Input{Duty: duty, CleanCoefficient: uc, DesignCoefficient: ud, DrivingDifference: 37.5, LinearSurface: 0.435})
			require.NoError(t, err)

			assert.GreaterOrEqual(t, res.CorrectedAreaFt2, res.RequiredAreaFt2)
			assert.GreaterOrEqual(t, res.CorrectedLengthFt, res.RequiredLengthFt)
			assert.Positive(t, res.Passes)
			assert.LessOrEqual(t, res.CorrectedDesignCoefficient, ud*(1+1e-12))
			assert.GreaterOrEqual(t, res.ImpliedFoulingFactor, 2*coefficient.DefaultFoulingAllowance*(1-1e-9))
		}
	}
}

func TestSizeErrors(t *testing.T) {
	valid := Input{Duty: 1000, CleanCoefficient: 20, DesignCoefficient: 19, DrivingDifference: 30, LinearSurface: 0.5}

	bad := valid
	bad.SegmentLength = 30
	_, err := Size(bad)
	assert.ErrorIs(t, err, calcerr.ErrConfig)

	for name, mutate := range map[string]func(*Input){
		"no duty":    func(in *Input) { in.Duty = 0 },
		"no surface": func(in *Input) { in.LinearSurface = 0 },
		"no dT":      func(in *Input) { in.DrivingDifference = -3 },
		"no Uc":      func(in *Input) { in.CleanCoefficient = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := Size(in)
			assert.ErrorIs(t, err, calcerr.ErrDomain)
		})
	}
}
