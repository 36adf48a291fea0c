package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"Thermex/internal/calc/batch"
	"Thermex/internal/calc/exchanger"
	"Thermex/internal/calc/importer"
	"Thermex/internal/calc/recommend"
	"Thermex/internal/fluid"
)

func newTab(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printResult(w io.Writer, res exchanger.Result) error {
	tw := newTab(w)
	geometry := res.Geometry.Nominal
	if res.Geometry.Gauge > 0 {
		geometry = fmt.Sprintf("%s in BWG %d", res.Geometry.Nominal, res.Geometry.Gauge)
	}
	if res.Name != "" {
		fmt.Fprintf(tw, "Case\t%s\n", res.Name)
	}
	fmt.Fprintf(tw, "Exchanger\t%s, %s, %s\n", res.Kind, res.Flow, geometry)
	fmt.Fprintf(tw, "Hot stream\t%s %.3f lb/h, %.3f -> %.3f F\n", res.Hot.Substance, res.Hot.MassFlowLbH, res.Hot.InletF, res.Hot.OutletF)
	fmt.Fprintf(tw, "Cold stream\t%s %.3f lb/h, %.3f -> %.3f F\n", res.Cold.Substance, res.Cold.MassFlowLbH, res.Cold.InletF, res.Cold.OutletF)
	fmt.Fprintf(tw, "Duty\t%.2f Btu/h\n", res.DutyBtuH)
	fmt.Fprintf(tw, "LMTD x F\t%.4f x %.4f = %.4f F\n", res.Driving.LMTD, res.Driving.CorrectionFactor, res.Driving.Driving)
	fmt.Fprintf(tw, "Reynolds inner / outer\t%.1f / %.1f\n", res.InnerFilm.Reynolds, res.OuterFilm.Reynolds)
	fmt.Fprintf(tw, "h inner (corr.) / outer\t%.4f / %.4f Btu/h ft2 F\n", res.CorrectedInnerCoefficient, res.OuterFilm.Coefficient)
	fmt.Fprintf(tw, "Uc / Ud\t%.4f / %.4f Btu/h ft2 F\n", res.CleanCoefficient, res.DesignCoefficient)
	fmt.Fprintf(tw, "Required area / length\t%.4f ft2 / %.4f ft\n", res.Sizing.RequiredAreaFt2, res.Sizing.RequiredLengthFt)
	fmt.Fprintf(tw, "Passes\t%d\n", res.Sizing.Passes)
	fmt.Fprintf(tw, "Installed area / length\t%.4f ft2 / %.1f ft\n", res.Sizing.CorrectedAreaFt2, res.Sizing.CorrectedLengthFt)
	fmt.Fprintf(tw, "Corrected Ud / Rd\t%.5f / %.5f\n", res.Sizing.CorrectedDesignCoefficient, res.Sizing.ImpliedFoulingFactor)
	fmt.Fprintf(tw, "Area margin\t%.1f %%\n", res.Margin()*100)
	fmt.Fprintf(tw, "Pressure drop inner / outer\t%.6f / %.6f psi\n", res.InnerPressure.PressureDropPSI, res.OuterPressure.PressureDropPSI)
	fmt.Fprintf(tw, "NTU / effectiveness\t%.5f / %.6f\n", res.Check.NTU, res.Check.Effectiveness)
	fmt.Fprintf(tw, "Actual / rating effectiveness\t%.6f / %.6f (agree: %t)\n", res.Check.ActualEffectiveness, res.Check.RatingEffectiveness, res.Check.Agrees)
	return tw.Flush()
}

func printBatch(w io.Writer, res batch.Result, skipped []importer.RowError) error {
	tw := newTab(w)
	fmt.Fprintln(tw, "#\tCASE\tPASSES\tAREA FT2\tUd\tMARGIN\tERROR")
	for _, it := range res.Results {
		if it.Result == nil {
			fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\t-\t%s\n", it.Index+1, it.Name, it.Error)
			continue
		}
		r := it.Result
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.3f\t%.4f\t%.1f%%\t\n",
			it.Index+1, it.Name, r.Sizing.Passes, r.Sizing.CorrectedAreaFt2, r.DesignCoefficient, r.Margin()*100)
	}
	for _, s := range skipped {
		fmt.Fprintf(tw, "row %d\t\t-\t-\t-\t-\tskipped: %s\n", s.Row, s.Error)
	}
	fmt.Fprintf(tw, "\nsucceeded %d, failed %d\n", res.Succeeded, res.Failed)
	return tw.Flush()
}

func printRecommendation(w io.Writer, res recommend.Result) error {
	tw := newTab(w)
	fmt.Fprintln(tw, "GEOMETRY\tPASSES\tAREA FT2\tMARGIN\tMAX DROP PSI\tEFFECTIVENESS\tNOTE")
	for _, c := range res.Candidates {
		name := c.Nominal
		if c.Gauge > 0 {
			name = fmt.Sprintf("%s BWG %d", c.Nominal, c.Gauge)
		}
		if !c.Feasible && c.Passes == 0 {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t%s\n", name, c.Reason)
			continue
		}
		note := c.Reason
		if c.Feasible {
			note = "ok"
		}
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.1f%%\t%.6f\t%.4f\t%s\n",
			name, c.Passes, c.CorrectedAreaFt2, c.Margin*100, max(c.InnerDropPSI, c.OuterDropPSI), c.Effectiveness, note)
	}
	if res.Best != nil {
		fmt.Fprintf(tw, "\nrecommended: %s\n", res.Best.Nominal)
	} else {
		fmt.Fprintln(tw, "\nno feasible geometry")
	}
	return tw.Flush()
}

func printCatalog(w io.Writer, l exchanger.CatalogListing) error {
	tw := newTab(w)
	fmt.Fprintln(tw, "DOUBLE PIPE")
	for _, code := range l.DoublePipe {
		fmt.Fprintf(tw, "  %s\n", code)
	}
	fmt.Fprintln(tw, "\nSHELL AND TUBE\tBWG")
	for _, e := range l.ShellAndTube {
		fmt.Fprintf(tw, "  %s\t%d\n", e.Nominal, e.Gauge)
	}
	return tw.Flush()
}

func printProperties(w io.Writer, substance string, t float64, p fluid.Properties) error {
	tw := newTab(w)
	fmt.Fprintf(tw, "%s at %g F\n", substance, t)
	fmt.Fprintf(tw, "density\t%.4f lb/ft3\n", p.DensityLbFt3)
	fmt.Fprintf(tw, "specific heat\t%.4f Btu/lb F\n", p.SpecificHeatBtuLbF)
	fmt.Fprintf(tw, "viscosity\t%.4f lb/ft h\n", p.ViscosityLbFtH)
	fmt.Fprintf(tw, "conductivity\t%.4f Btu/h ft F\n", p.ConductivityBtuHFt)
	return tw.Flush()
}
