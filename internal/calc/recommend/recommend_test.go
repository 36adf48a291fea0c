package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Thermex/internal/calc/calcerr"
	"Thermex/internal/calc/catalog"
	"Thermex/internal/calc/exchanger"
	"Thermex/internal/config"
	"Thermex/internal/fluid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doublePipe() exchanger.Input {
	return exchanger.Input{
		Name: "cooler",
		Kind: "double-pipe",
		Flow: "counter-current",
		Hot:  exchanger.Stream{Substance: "acetone", InletF: 199.868, OutletF: 176.504},
		Cold: exchanger.Stream{Substance: "water", MassFlowLbH: 169.999, InletF: 81.986, OutletF: 109.112},
	}
}

func TestRecommendDoublePipe(t *testing.T) {
	res, err := Recommend(context.Background(), nil, Input{Case: doublePipe()})
	require.NoError(t, err)
	assert.Equal(t, catalog.DoublePipe, res.Kind)
	require.Len(t, res.Candidates, 3)
	require.NotNil(t, res.Best)

	assert.Equal(t, "2*1-1/4", res.Best.Nominal)
	assert.Equal(t, 1, res.Best.Passes)
	assert.InDelta(t, 40*0.435, res.Best.CorrectedAreaFt2, 1e-9)
	for i := 1; i < len(res.Candidates); i++ {
		assert.LessOrEqual(t, res.Candidates[i-1].CorrectedAreaFt2, res.Candidates[i].CorrectedAreaFt2)
	}
	for _, c := range res.Candidates {
		assert.True(t, c.Feasible)
		assert.Positive(t, c.Margin)
		assert.Greater(t, c.Effectiveness, 0.0)
		assert.Less(t, c.Effectiveness, 1.0)
	}
}

func TestRecommendLimits(t *testing.T) {
	res, err := Recommend(context.Background(), nil, Input{Case: doublePipe(), MaxPressureDropPSI: 1e-9})
	require.NoError(t, err)
	assert.Nil(t, res.Best)
	for _, c := range res.Candidates {
		assert.False(t, c.Feasible)
		assert.Contains(t, c.Reason, "pressure drop")
	}

	short := config.DefaultConstants()
	short.ArmLengthFt, short.SegmentLengthFt = 1, 2
	calc := exchanger.NewCalculator(short, fluid.DefaultTable(), nil)
	res, err = Recommend(context.Background(), calc, Input{Case: doublePipe(), MaxPasses: 2})
	require.NoError(t, err)
	var rejected int
	for _, c := range res.Candidates {
		if c.Passes > 2 {
			rejected++
			assert.False(t, c.Feasible)
			assert.Contains(t, c.Reason, "passes exceeds")
		}
	}
	assert.Positive(t, rejected)
}

func TestRecommendShellAndTube(t *testing.T) {
	w := fluid.Properties{DensityLbFt3: 62.38, SpecificHeatBtuLbF: 1.0097, ViscosityLbFtH: 1.7119, ConductivityBtuHFt: 0.3616}
	a := fluid.Properties{DensityLbFt3: 0.13, SpecificHeatBtuLbF: 0.3438, ViscosityLbFtH: 0.0178, ConductivityBtuHFt: 0.087}
	in := exchanger.Input{
		Kind:        "shell-and-tube",
		Flow:        "counter-current",
		Arrangement: "square",
		Hot:         exchanger.Stream{InletF: 163.868, OutletF: 140.198, Properties: &a},
		Cold:        exchanger.Stream{MassFlowLbH: 422.4975, InletF: 81.968, OutletF: 119.112, Properties: &w},
	}
	res, err := Recommend(context.Background(), nil, Input{Case: in, Workers: 4})
	require.NoError(t, err)
	require.Len(t, res.Candidates, len(catalog.TubeEntries()))
	require.NotNil(t, res.Best)

	var halfInch int
	for _, c := range res.Candidates {
		if c.Nominal == "1/2" {
			halfInch++
			assert.False(t, c.Feasible)
			assert.Contains(t, c.Reason, "lookup error")
		}
	}
	assert.Equal(t, 4, halfInch)
}

func TestRecommendUnknownKind(t *testing.T) {
	in := doublePipe()
	in.Kind = "plate"
	_, err := Recommend(context.Background(), nil, Input{Case: in})
	assert.ErrorIs(t, err, calcerr.ErrConfig)
}

func TestHandler(t *testing.T) {
	body, err := json.Marshal(Input{Case: doublePipe()})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/api/exchanger/recommend", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Best)
	assert.Equal(t, "2*1-1/4", res.Best.Nominal)

	rec = httptest.NewRecorder()
	(&Handler{}).Calc(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"case":{"kind":"plate"}}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
