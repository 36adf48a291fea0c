package report

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Thermex/internal/calc/exchanger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() exchanger.Input {
	return exchanger.Input{
		Kind:    "double-pipe",
		Flow:    "counter-current",
		Nominal: "3*2",
		Hot:     exchanger.Stream{Substance: "acetone", InletF: 199.868, OutletF: 176.504},
		Cold:    exchanger.Stream{Substance: "water", MassFlowLbH: 169.999, InletF: 81.986, OutletF: 109.112},
	}
}

func TestRender(t *testing.T) {
	res, err := exchanger.Calculate(sample())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Meta{Project: "Solvent recovery", Author: "process", Notes: "Check fouling after first season."}, res))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestHandlerGenerate(t *testing.T) {
	body, err := json.Marshal(Input{Meta: Meta{Project: "p"}, Case: sample()})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	(&Handler{}).Generate(rec, httptest.NewRequest(http.MethodPost, "/api/exchanger/report", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestHandlerGenerateErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Generate(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("[")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	in := sample()
	in.Flow = "sideways"
	body, err := json.Marshal(Input{Case: in})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	(&Handler{}).Generate(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
