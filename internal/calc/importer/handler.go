package importer

import (
	"encoding/json"
	"net/http"

	"Thermex/internal/calc/batch"
	"Thermex/internal/calc/exchanger"
	"github.com/sirupsen/logrus"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Calculator *exchanger.Calculator
	Workers    int
}

type ImportResult struct {
	Count   int          `json:"count"`
	Skipped []RowError   `json:"skipped,omitempty"`
	Batch   batch.Result `json:"batch"`
}

// Import sizes every case in an uploaded sheet. With ?format=xlsx the
// results come back as a workbook, otherwise as JSON.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	cases, skipped, err := ReadCases(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(cases) == 0 {
		http.Error(w, "No valid cases in sheet", http.StatusBadRequest)
		return
	}
	in := batch.Input{Workers: h.Workers, Items: make([]exchanger.Input, len(cases))}
	rows := make([]int, len(cases))
	for i, c := range cases {
		in.Items[i] = c.Input
		rows[i] = c.Row
	}
	res, err := batch.Run(r.Context(), h.Calculator, in)
	if err != nil {
		http.Error(w, err.Error(), exchanger.StatusFor(err))
		return
	}
	logrus.WithFields(logrus.Fields{"cases": len(cases), "skipped": len(skipped), "failed": res.Failed}).Info("sheet imported")

	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", xlsxType)
		w.Header().Set("Content-Disposition", "attachment; filename=\"results.xlsx\"")
		if err := WriteResults(w, res, rows, skipped); err != nil {
			http.Error(w, "Workbook generation error", http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ImportResult{Count: len(cases), Skipped: skipped, Batch: res})
}

func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", "attachment; filename=\"cases.xlsx\"")
	if err := WriteTemplate(w); err != nil {
		http.Error(w, "Workbook generation error", http.StatusInternalServerError)
	}
}
