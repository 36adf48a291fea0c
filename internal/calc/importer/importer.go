// Package importer reads sizing cases from xlsx sheets and writes results
// back as a workbook.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"Thermex/internal/calc/batch"
	"Thermex/internal/calc/exchanger"
	"Thermex/internal/fluid"
	"github.com/xuri/excelize/v2"
)

// Columns recognised in the case sheet header. Matching ignores case and
// surrounding spaces. Property columns are optional; a stream gets inline
// properties only when all four of its columns are filled.
var caseColumns = []string{
	"name", "kind", "flow", "nominal", "gauge", "arrangement", "inner_side", "fouling_allowance",
	"hot_substance", "hot_flow", "hot_in", "hot_out",
	"hot_density", "hot_cp", "hot_viscosity", "hot_conductivity",
	"cold_substance", "cold_flow", "cold_in", "cold_out",
	"cold_density", "cold_cp", "cold_viscosity", "cold_conductivity",
}

var requiredColumns = []string{"kind", "flow", "nominal", "hot_in", "hot_out", "cold_in", "cold_out"}

// RowError reports a sheet row that could not be turned into a case.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Case is a parsed row with its 1-based sheet row number.
type Case struct {
	Row   int
	Input exchanger.Input
}

// ReadCases parses the first sheet of an xlsx workbook.
func ReadCases(r io.Reader) ([]Case, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("importer: open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("importer: read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("importer: sheet has no cases")
	}
	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("importer: missing column %q", col)
		}
	}

	var cases []Case
	var skipped []RowError
	for i := 1; i < len(rows); i++ {
		row := sheetRow{cells: rows[i], index: index}
		if row.empty() {
			continue
		}
		in, err := row.input()
		if err != nil {
			skipped = append(skipped, RowError{Row: i + 1, Error: err.Error()})
			continue
		}
		cases = append(cases, Case{Row: i + 1, Input: in})
	}
	return cases, skipped, nil
}

type sheetRow struct {
	cells []string
	index map[string]int
}

func (r sheetRow) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r sheetRow) empty() bool {
	for _, c := range r.cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (r sheetRow) float(col string, required bool) (float64, error) {
	s := r.get(col)
	if s == "" {
		if required {
			return 0, fmt.Errorf("%s is empty", col)
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", col, s)
	}
	return v, nil
}

func (r sheetRow) input() (exchanger.Input, error) {
	in := exchanger.Input{
		Name:        r.get("name"),
		Kind:        r.get("kind"),
		Flow:        r.get("flow"),
		Nominal:     r.get("nominal"),
		Arrangement: r.get("arrangement"),
		InnerSide:   strings.ToLower(r.get("inner_side")),
	}
	if g := r.get("gauge"); g != "" {
		v, err := strconv.Atoi(g)
		if err != nil {
			return in, fmt.Errorf("gauge: %q is not an integer", g)
		}
		in.Gauge = v
	}
	if r.get("fouling_allowance") != "" {
		v, err := r.float("fouling_allowance", true)
		if err != nil {
			return in, err
		}
		in.FoulingAllowance = &v
	}
	var err error
	if in.Hot, err = r.stream("hot"); err != nil {
		return in, err
	}
	if in.Cold, err = r.stream("cold"); err != nil {
		return in, err
	}
	return in, nil
}

func (r sheetRow) stream(prefix string) (exchanger.Stream, error) {
	s := exchanger.Stream{Substance: r.get(prefix + "_substance")}
	var err error
	if s.MassFlowLbH, err = r.float(prefix+"_flow", false); err != nil {
		return s, err
	}
	if s.InletF, err = r.float(prefix+"_in", true); err != nil {
		return s, err
	}
	if s.OutletF, err = r.float(prefix+"_out", true); err != nil {
		return s, err
	}
	propCols := []string{prefix + "_density", prefix + "_cp", prefix + "_viscosity", prefix + "_conductivity"}
	var vals [4]float64
	filled := 0
	for i, col := range propCols {
		if r.get(col) == "" {
			continue
		}
		if vals[i], err = r.float(col, true); err != nil {
			return s, err
		}
		filled++
	}
	switch filled {
	case 0:
	case len(propCols):
		s.Properties = &fluid.Properties{DensityLbFt3: vals[0], SpecificHeatBtuLbF: vals[1], ViscosityLbFtH: vals[2], ConductivityBtuHFt: vals[3]}
	default:
		return s, fmt.Errorf("%s properties are partly filled", prefix)
	}
	return s, nil
}

var resultColumns = []any{
	"row", "name", "status", "error", "kind", "nominal", "gauge",
	"duty_btu_h", "lmtd_f", "correction_factor", "clean_u", "design_u",
	"required_area_ft2", "required_length_ft", "passes", "corrected_length_ft", "corrected_area_ft2",
	"corrected_u", "implied_fouling", "inner_dp_psi", "outer_dp_psi",
	"ntu", "effectiveness", "actual_effectiveness", "agrees",
}

// WriteResults writes one row per batch item, in order, to an xlsx workbook.
// rows gives the source sheet row of each item and may be nil.
func WriteResults(w io.Writer, res batch.Result, rows []int, skipped []RowError) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &resultColumns); err != nil {
		return err
	}
	for i, it := range res.Results {
		src := it.Index + 2
		if rows != nil && it.Index < len(rows) {
			src = rows[it.Index]
		}
		line := []any{src, it.Name, it.Status, it.Error}
		if r := it.Result; r != nil {
			line = append(line,
				string(r.Kind), r.Geometry.Nominal, r.Geometry.Gauge,
				r.DutyBtuH, r.Driving.LMTD, r.Driving.CorrectionFactor, r.CleanCoefficient, r.DesignCoefficient,
				r.Sizing.RequiredAreaFt2, r.Sizing.RequiredLengthFt, r.Sizing.Passes, r.Sizing.CorrectedLengthFt, r.Sizing.CorrectedAreaFt2,
				r.Sizing.CorrectedDesignCoefficient, r.Sizing.ImpliedFoulingFactor, r.InnerPressure.PressureDropPSI, r.OuterPressure.PressureDropPSI,
				r.Check.NTU, r.Check.Effectiveness, r.Check.ActualEffectiveness, r.Check.Agrees,
			)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return err
		}
	}

	if len(skipped) > 0 {
		const skippedSheet = "Skipped"
		if _, err := f.NewSheet(skippedSheet); err != nil {
			return err
		}
		if err := f.SetSheetRow(skippedSheet, "A1", &[]any{"row", "error"}); err != nil {
			return err
		}
		for i, s := range skipped {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(skippedSheet, cell, &[]any{s.Row, s.Error}); err != nil {
				return err
			}
		}
	}
	_, err := f.WriteTo(w)
	return err
}

// WriteTemplate writes an empty case sheet with every recognised column.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(caseColumns))
	for i, c := range caseColumns {
		header[i] = c
	}
	if err := f.SetSheetName("Sheet1", "Cases"); err != nil {
		return err
	}
	if err := f.SetSheetRow("Cases", "A1", &header); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}
