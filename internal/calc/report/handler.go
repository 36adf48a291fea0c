package report

import (
	"encoding/json"
	"net/http"

	"Thermex/internal/calc/exchanger"
)

type Input struct {
	Meta
	Case exchanger.Input `json:"case"`
}

type Handler struct {
	Calculator *exchanger.Calculator
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	calc := h.Calculator
	if calc == nil {
		calc = exchanger.Default()
	}
	res, err := calc.Calculate(r.Context(), input.Case)
	if err != nil {
		http.Error(w, err.Error(), exchanger.StatusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"exchanger.pdf\"")
	if err := Render(w, input.Meta, res); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}
