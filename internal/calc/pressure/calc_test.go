package pressure

import (
	"testing"

	"Thermex/internal/calc/calcerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAnnulus(t *testing.T) {
	res, err := Compute(Side{
		MassVelocity:  8315.597122,
		Density:       62.0,
		Viscosity:     1.75,
		Diameter:      (3.068 - 2.38) / 12,
		Length:        40,
		Passes:        1,
		VelocityHeads: true,
	})
	require.NoError(t, err)
	assert.InDelta(t, 272.4348, res.Reynolds, 1e-3)
	assert.InDelta(t, 0.0285492, res.FrictionFactor, 1e-6)
	assert.InDelta(t, 2.15532e-5, res.EntranceExitFt, 1e-9)
	assert.InDelta(t, 0.00074741, res.PressureDropPSI, 1e-8)
}

func TestComputeInnerPipe(t *testing.T) {
	res, err := Compute(Side{
		MassVelocity: 15259.281379,
		Density:      45.499,
		Viscosity:    0.9148,
		Diameter:     2.067 / 12,
		Length:       40,
		Passes:       1,
	})
	require.NoError(t, err)
	assert.InDelta(t, 2873.2086, res.Reynolds, 1e-3)
	assert.Zero(t, res.EntranceExitFt)
	assert.Zero(t, res.VelocityFtS)
	assert.InDelta(t, 0.00050595, res.PressureDropPSI, 1e-8)
}

func TestDropGrowsWithLength(t *testing.T) {
	side := Side{MassVelocity: 5e4, Density: 60, Viscosity: 2, Diameter: 0.1, Length: 40, Passes: 1, VelocityHeads: true}
	short, err := Compute(side)
	require.NoError(t, err)
	side.Length, side.Passes = 80, 2
	long, err := Compute(side)
	require.NoError(t, err)
	assert.InEpsilon(t, 2*short.PressureDropPSI, long.PressureDropPSI, 1e-9)
}

func TestComputeErrors(t *testing.T) {
	for name, s := range map[string]Side{
		"no length":    {MassVelocity: 1, Density: 1, Viscosity: 1, Diameter: 1},
		"no flow":      {Density: 1, Viscosity: 1, Diameter: 1, Length: 1},
		"no density":   {MassVelocity: 1, Viscosity: 1, Diameter: 1, Length: 1},
		"no viscosity": {MassVelocity: 1, Density: 1, Diameter: 1, Length: 1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Compute(s)
			assert.ErrorIs(t, err, calcerr.ErrDomain)
		})
	}
}
