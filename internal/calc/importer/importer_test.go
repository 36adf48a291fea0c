package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"Thermex/internal/calc/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var caseSheet = [][]any{
	{"Name", "Kind", "Flow", "Nominal", "Gauge", "Arrangement",
		"hot_substance", "hot_flow", "hot_in", "hot_out",
		"cold_substance", "cold_flow", "cold_in", "cold_out",
		"cold_density", "cold_cp", "cold_viscosity", "cold_conductivity"},
	{"dp", "double pipe", "counter-current", "3*2", "", "",
		"acetone", "", 199.868, 176.504,
		"water", 169.999, 81.986, 109.112,
		62.0, 0.998, 1.75, 0.363},
	{"bad temp", "double pipe", "parallel", "3*2", "", "",
		"acetone", "", "hot", 176.504,
		"water", 169.999, 81.986, 109.112},
	{"partial props", "double pipe", "parallel", "3*2", "", "",
		"acetone", "", 199.868, 176.504,
		"water", 169.999, 81.986, 109.112,
		62.0},
	{"missing gauge", "shell and tube", "counter-current", "3/4", 20, "square",
		"acetone", "", 199.868, 176.504,
		"water", 169.999, 81.986, 109.112},
}

func TestReadCases(t *testing.T) {
	cases, skipped, err := ReadCases(workbook(t, caseSheet))
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, 2, cases[0].Row)
	assert.Equal(t, "dp", cases[0].Input.Name)
	assert.Equal(t, 169.999, cases[0].Input.Cold.MassFlowLbH)
	require.NotNil(t, cases[0].Input.Cold.Properties)
	assert.Equal(t, 0.363, cases[0].Input.Cold.Properties.ConductivityBtuHFt)
	assert.Nil(t, cases[0].Input.Hot.Properties)
	assert.Equal(t, 20, cases[1].Input.Gauge)

	require.Len(t, skipped, 2)
	assert.Equal(t, 3, skipped[0].Row)
	assert.Contains(t, skipped[0].Error, "hot_in")
	assert.Equal(t, 4, skipped[1].Row)
	assert.Contains(t, skipped[1].Error, "partly filled")
}

func TestReadCasesRejectsSheet(t *testing.T) {
	_, _, err := ReadCases(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)

	_, _, err = ReadCases(workbook(t, [][]any{{"kind", "flow"}, {"double pipe", "parallel"}}))
	assert.ErrorContains(t, err, "missing column")

	_, _, err = ReadCases(workbook(t, [][]any{caseSheet[0]}))
	assert.ErrorContains(t, err, "no cases")
}

func upload(t *testing.T, target string, body *bytes.Buffer) *http.Request {
	t.Helper()
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "cases.xlsx")
	require.NoError(t, err)
	_, err = part.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandlerImportJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, upload(t, "/api/exchanger/import", workbook(t, caseSheet)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Count)
	assert.Len(t, res.Skipped, 2)
	assert.Equal(t, 1, res.Batch.Succeeded)
	assert.Equal(t, 1, res.Batch.Failed)
	assert.Equal(t, 1, res.Batch.Results[0].Result.Sizing.Passes)
}

func TestHandlerImportXLSX(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, upload(t, "/api/exchanger/import?format=xlsx", workbook(t, caseSheet)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "row", rows[0][0])
	assert.Equal(t, []string{"2", "dp", "200"}, rows[1][:3])
	assert.Equal(t, "5", rows[2][0])
	assert.Contains(t, rows[2][3], "lookup error")

	skipped, err := f.GetRows("Skipped")
	require.NoError(t, err)
	assert.Len(t, skipped, 3)
}

func TestHandlerImportErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	(&Handler{}).Import(rec, upload(t, "/", workbook(t, [][]any{caseSheet[0], caseSheet[2]})))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Cases")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, len(caseColumns), len(rows[0]))

	var out bytes.Buffer
	require.NoError(t, WriteResults(&out, batch.Result{}, nil, nil))
	assert.NotZero(t, out.Len())
}
