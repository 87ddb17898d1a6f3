package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

type CampaignHandler struct {
	CampaignUC *usecase.CampaignUseCase
	DispatchUC *usecase.DispatchCampaignUseCase
}

func NewCampaignHandler(campaigns *usecase.CampaignUseCase, dispatch *usecase.DispatchCampaignUseCase) *CampaignHandler {
	return &CampaignHandler{CampaignUC: campaigns, DispatchUC: dispatch}
}

type ScheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Create (POST /campaigns)
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateCampaignInput
	if !decodeJSON(w, r, &input, false) {
		return
	}

	c, err := h.CampaignUC.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// List (GET /campaigns?status=&type=)
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.CampaignFilter{
		Status: entity.CampaignStatus(q.Get("status")),
		Type:   entity.CampaignType(q.Get("type")),
	}

	list, err := h.CampaignUC.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get (GET /campaigns/{id})
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.CampaignUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Schedule (POST /campaigns/{id}/schedule)
func (h *CampaignHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	c, err := h.CampaignUC.Schedule(r.Context(), chi.URLParam(r, "id"), req.ScheduledAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Dispatch (POST /campaigns/{id}/dispatch)
func (h *CampaignHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var input usecase.StartDispatchInput
	if !decodeJSON(w, r, &input, true) {
		return
	}
	input.CampaignID = chi.URLParam(r, "id")

	out, err := h.DispatchUC.Start(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, out)
}

// RecordOutcome (POST /campaigns/{id}/outcome)
func (h *CampaignHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	var input usecase.RecordOutcomeInput
	if !decodeJSON(w, r, &input, false) {
		return
	}

	c, err := h.CampaignUC.RecordOutcome(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Cancel (POST /campaigns/{id}/cancel). 202 when the dispatch runs elsewhere
// and has only been asked to stop.
func (h *CampaignHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	c, err := h.CampaignUC.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if c.CancelRequested && c.Status == entity.CampaignDispatching {
		status = http.StatusAccepted
	}
	writeJSON(w, status, c)
}

// Rerun (POST /campaigns/{id}/rerun)
func (h *CampaignHandler) Rerun(w http.ResponseWriter, r *http.Request) {
	c, err := h.CampaignUC.Rerun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
