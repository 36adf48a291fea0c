package exchanger

import (
	"encoding/json"
	"errors"
	"net/http"

	"Thermex/internal/calc/calcerr"
	"Thermex/internal/calc/catalog"
	"Thermex/internal/fluid"
)

// Handler serves sizing runs. A nil Calculator uses the defaults.
type Handler struct {
	Calculator *Calculator
}

func (h *Handler) calculator() *Calculator {
	if h.Calculator == nil {
		return defaultCalculator
	}
	return h.Calculator
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.calculator().Calculate(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// CatalogListing is the set of geometry keys a run may name.
type CatalogListing struct {
	DoublePipe   []string            `json:"double_pipe"`
	ShellAndTube []catalog.TubeEntry `json:"shell_and_tube"`
}

func Listing() CatalogListing {
	return CatalogListing{DoublePipe: catalog.DoublePipeCodes(), ShellAndTube: catalog.TubeEntries()}
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Listing())
}

// StatusFor maps a run error to an HTTP status. A broken property source
// wins over a lookup miss when both are present.
func StatusFor(err error) int {
	switch {
	case calcerr.IsCalculation(err):
		return http.StatusBadRequest
	case errors.Is(err, fluid.ErrUnavailable), errors.Is(err, fluid.ErrMalformed):
		return http.StatusBadGateway
	case errors.Is(err, fluid.ErrUnknownSubstance), errors.Is(err, fluid.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
