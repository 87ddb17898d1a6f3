package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/sitm-outreach/internal/jobs"
)

type JobHandler struct {
	Runner *jobs.Runner
}

func NewJobHandler(runner *jobs.Runner) *JobHandler {
	return &JobHandler{Runner: runner}
}

// Get (GET /jobs/{id})
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.Runner.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Cancel (DELETE /jobs/{id}) only requests cancellation; the job state
// changes once the task returns.
func (h *JobHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Runner.Cancel(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, JobAcceptedResponse{JobID: id})
}
