package correlation

import (
	"math"
	"testing"

	"Thermex/internal/calc/calcerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReynolds(t *testing.T) {
	re, err := Reynolds(0.5, 1000, 2)
	require.NoError(t, err)
	assert.InDelta(t, 250.0, re, 1e-12)

	for _, tc := range []struct {
		name    string
		d, g, m float64
	}{
		{"zero diameter", 0, 1000, 2},
		{"negative mass velocity", 0.5, -1, 2},
		{"zero viscosity", 0.5, 1000, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Reynolds(tc.d, tc.g, tc.m)
			assert.ErrorIs(t, err, calcerr.ErrDomain)
		})
	}
}

func TestPrandtl(t *testing.T) {
	pr, err := Prandtl(1.0, 1.75, 0.35)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, pr, 1e-12)

	_, err = Prandtl(1.0, 1.75, 0)
	assert.ErrorIs(t, err, calcerr.ErrDomain)
}

func TestNusseltBandBoundaries(t *testing.T) {
	pr := 8.0 // cube root is exactly 2
	cases := []struct {
		re, coeff, exp float64
	}{
		{0.4, 0.989, 0.330},
		{3.999, 0.989, 0.330},
		{4, 0.911, 0.385},
		{40, 0.683, 0.466},
		{4000, 0.193, 0.618},
		{39999, 0.193, 0.618},
		{40000, 0.027, 0.805},
		{1e6, 0.027, 0.805},
	}
	for _, tc := range cases {
		nu, err := Nusselt(tc.re, pr)
		require.NoError(t, err, "Re=%g", tc.re)
		want := tc.coeff * math.Pow(tc.re, tc.exp) * 2
		assert.InDelta(t, want, nu, 1e-9*want, "Re=%g", tc.re)
	}
}

func TestNusseltUsesCubeRootOfPrandtl(t *testing.T) {
	a, err := Nusselt(100, 1)
	require.NoError(t, err)
	b, err := Nusselt(100, 27)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, b/a, 1e-12)
}

func TestNusseltOutOfRange(t *testing.T) {
	for _, re := range []float64{0, -3, 0.39} {
		_, err := Nusselt(re, 5)
		assert.ErrorIs(t, err, calcerr.ErrDomain, "Re=%g", re)
	}
	_, err := Nusselt(100, 0)
	assert.ErrorIs(t, err, calcerr.ErrDomain)
}

func TestFrictionFactor(t *testing.T) {
	f, err := FrictionFactor(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.2675, f, 1e-12)

	f1, _ := FrictionFactor(1e3)
	f2, _ := FrictionFactor(1e5)
	assert.Greater(t, f1, f2)

	_, err = FrictionFactor(0)
	assert.ErrorIs(t, err, calcerr.ErrDomain)
}

func TestConvectiveCoefficient(t *testing.T) {
	h, err := ConvectiveCoefficient(10, 0.36, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 18.0, h, 1e-12)

	_, err = ConvectiveCoefficient(10, 0.36, 0)
	assert.ErrorIs(t, err, calcerr.ErrDomain)
}
