package recommend

import (
	"encoding/json"
	"net/http"

	"Thermex/internal/calc/exchanger"
)

type Handler struct {
	Calculator *exchanger.Calculator
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Recommend(r.Context(), h.Calculator, input)
	if err != nil {
		http.Error(w, err.Error(), exchanger.StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
