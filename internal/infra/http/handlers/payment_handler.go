package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

type PaymentHandler struct {
	PaymentUC *usecase.ProcessPaymentUseCase
	PlansUC   *usecase.PaymentPlansUseCase
}

func NewPaymentHandler(uc *usecase.ProcessPaymentUseCase, plans *usecase.PaymentPlansUseCase) *PaymentHandler {
	return &PaymentHandler{PaymentUC: uc, PlansUC: plans}
}

// Process (POST /payments). A declined payment is still a 201: the record
// was created and carries the Declined status.
func (h *PaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	var input usecase.ProcessPaymentInput
	if !decodeJSON(w, r, &input, false) {
		return
	}

	payment, err := h.PaymentUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// Get (GET /payments/{id})
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	payment, err := h.PaymentUC.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

// Plans (GET /payments/plans?program=&price=)
func (h *PaymentHandler) Plans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := usecase.PaymentPlansInput{Program: q.Get("program")}
	if raw := q.Get("price"); raw != "" {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			badRequest(w, "price", "price must be a decimal number")
			return
		}
		input.Price = p
	}

	plans, err := h.PlansUC.Plans(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// Link (POST /payments/links)
func (h *PaymentHandler) Link(w http.ResponseWriter, r *http.Request) {
	var input usecase.PaymentPlansInput
	if !decodeJSON(w, r, &input, false) {
		return
	}

	link, err := h.PlansUC.Link(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}
