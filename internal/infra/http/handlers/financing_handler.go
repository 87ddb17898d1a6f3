package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

type FinancingHandler struct {
	QuoteUC *usecase.QuoteFinancingUseCase
}

func NewFinancingHandler(uc *usecase.QuoteFinancingUseCase) *FinancingHandler {
	return &FinancingHandler{QuoteUC: uc}
}

// Quote (GET /financing/quote?principal=&provider=&program=)
func (h *FinancingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	input, ok := financingInput(w, r)
	if !ok {
		return
	}

	plan, err := h.QuoteUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// Options (GET /financing/options?principal=&program=)
func (h *FinancingHandler) Options(w http.ResponseWriter, r *http.Request) {
	input, ok := financingInput(w, r)
	if !ok {
		return
	}

	plans, err := h.QuoteUC.Options(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func financingInput(w http.ResponseWriter, r *http.Request) (usecase.QuoteFinancingInput, bool) {
	q := r.URL.Query()
	input := usecase.QuoteFinancingInput{
		Provider: q.Get("provider"),
		Program:  q.Get("program"),
	}
	if raw := q.Get("principal"); raw != "" {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			badRequest(w, "principal", "principal must be a decimal number")
			return input, false
		}
		input.Principal = p
	}
	return input, true
}
