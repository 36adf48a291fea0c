// Package report renders a sizing result as a one-page PDF data sheet.
package report

import (
	"fmt"
	"io"
	"time"

	"Thermex/internal/calc/exchanger"
	"github.com/phpdave11/gofpdf"
)

type Meta struct {
	Project string `json:"project" yaml:"project"`
	Author  string `json:"author" yaml:"author"`
	Title   string `json:"title" yaml:"title"`
	Notes   string `json:"notes" yaml:"notes"`
}

type row struct {
	label, value string
}

// Render writes the data sheet for res to w.
func Render(w io.Writer, meta Meta, res exchanger.Result) error {
	if meta.Title == "" {
		meta.Title = "Heat Exchanger Data Sheet"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", meta.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", meta.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", res.ID))
	pdf.Ln(10)

	geometry := fmt.Sprintf("%s, nominal %s", res.Kind, res.Geometry.Nominal)
	if res.Geometry.Gauge > 0 {
		geometry += fmt.Sprintf(", BWG %d, %s pitch", res.Geometry.Gauge, res.Arrangement)
	}
	section(pdf, "Configuration", []row{
		{"Exchanger", geometry},
		{"Flow arrangement", string(res.Flow)},
		{"Inner passage", res.InnerSide + " stream"},
	})
	section(pdf, "Streams", []row{
		{"Hot " + res.Hot.Substance, streamLine(res.Hot)},
		{"Cold " + res.Cold.Substance, streamLine(res.Cold)},
		{"Duty", fmt.Sprintf("%.1f Btu/h", res.DutyBtuH)},
	})
	section(pdf, "Heat transfer", []row{
		{"LMTD / F / driving", fmt.Sprintf("%.3f F / %.4f / %.3f F", res.Driving.LMTD, res.Driving.CorrectionFactor, res.Driving.Driving)},
		{"Inner film Re / h", fmt.Sprintf("%.1f / %.3f Btu/h ft2 F", res.InnerFilm.Reynolds, res.InnerFilm.Coefficient)},
		{"Outer film Re / h", fmt.Sprintf("%.1f / %.3f Btu/h ft2 F", res.OuterFilm.Reynolds, res.OuterFilm.Coefficient)},
		{"Uc / Ud", fmt.Sprintf("%.3f / %.3f Btu/h ft2 F", res.CleanCoefficient, res.DesignCoefficient)},
		{"Fouling allowance", fmt.Sprintf("%.4g h ft2 F/Btu per surface", res.FoulingAllowance)},
	})
	section(pdf, "Sizing", []row{
		{"Required area / length", fmt.Sprintf("%.3f ft2 / %.3f ft", res.Sizing.RequiredAreaFt2, res.Sizing.RequiredLengthFt)},
		{"Passes", fmt.Sprintf("%d", res.Sizing.Passes)},
		{"Installed area / length", fmt.Sprintf("%.3f ft2 / %.1f ft", res.Sizing.CorrectedAreaFt2, res.Sizing.CorrectedLengthFt)},
		{"Corrected Ud", fmt.Sprintf("%.3f Btu/h ft2 F", res.Sizing.CorrectedDesignCoefficient)},
		{"Implied fouling factor", fmt.Sprintf("%.4f h ft2 F/Btu", res.Sizing.ImpliedFoulingFactor)},
		{"Pressure drop inner / outer", fmt.Sprintf("%.6f / %.6f psi", res.InnerPressure.PressureDropPSI, res.OuterPressure.PressureDropPSI)},
	})
	agree := "yes"
	if !res.Check.Agrees {
		agree = "no"
	}
	section(pdf, "Effectiveness-NTU check", []row{
		{"Cmin / Cr", fmt.Sprintf("%.3f Btu/h F / %.4f", res.Check.MinCapacity, res.Check.CapacityRatio)},
		{"NTU / effectiveness", fmt.Sprintf("%.4f / %.4f", res.Check.NTU, res.Check.Effectiveness)},
		{"Actual / rated effectiveness", fmt.Sprintf("%.6f / %.6f (agree: %s)", res.Check.ActualEffectiveness, res.Check.RatingEffectiveness, agree)},
	})

	if meta.Notes != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Notes")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, meta.Notes, "", "L", false)
	}
	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string, rows []row) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		pdf.CellFormat(70, 6, r.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, r.value, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func streamLine(s exchanger.StreamState) string {
	line := fmt.Sprintf("%.3f lb/h, %.3f -> %.3f F", s.MassFlowLbH, s.InletF, s.OutletF)
	if s.FlowDerived {
		line += " (flow from duty)"
	}
	return line
}
