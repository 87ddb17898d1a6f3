package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

type LeadHandler struct {
	GenerateUC *usecase.GenerateLeadsUseCase
	ListUC     *usecase.ListLeadsUseCase
	StatusUC   *usecase.UpdateLeadStatusUseCase
}

func NewLeadHandler(generate *usecase.GenerateLeadsUseCase, list *usecase.ListLeadsUseCase, status *usecase.UpdateLeadStatusUseCase) *LeadHandler {
	return &LeadHandler{GenerateUC: generate, ListUC: list, StatusUC: status}
}

type JobAcceptedResponse struct {
	JobID string `json:"job_id"`
}

// Generate (POST /leads/generate)
func (h *LeadHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var input usecase.GenerateLeadsInput
	if !decodeJSON(w, r, &input, false) {
		return
	}

	out, err := h.GenerateUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// GenerateAsync (POST /leads/generate/async)
func (h *LeadHandler) GenerateAsync(w http.ResponseWriter, r *http.Request) {
	var input usecase.GenerateLeadsInput
	if !decodeJSON(w, r, &input, false) {
		return
	}

	jobID, err := h.GenerateUC.Start(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, JobAcceptedResponse{JobID: jobID})
}

// List (GET /leads?kind=&source=&limit=&offset=)
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.LeadFilter{
		Kind:   entity.LeadKind(q.Get("kind")),
		Source: q.Get("source"),
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		badRequest(w, "kind", "kind must be Student, Corporate or GovernmentOffice")
		return
	}

	var ok bool
	if filter.Limit, ok = queryInt(w, r, "limit"); !ok {
		return
	}
	if filter.Offset, ok = queryInt(w, r, "offset"); !ok {
		return
	}

	leads, err := h.ListUC.Execute(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

// UpdateStatus (PATCH /leads/{id}/status)
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateLeadStatusInput
	if !decodeJSON(w, r, &input, false) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")

	lead, err := h.StatusUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(w, name, name+" must be an integer")
		return 0, false
	}
	return n, true
}
