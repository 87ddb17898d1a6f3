package handlers

import (
	"net/http"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

type ContentHandler struct {
	RenderUC *usecase.RenderContentUseCase
	Programs entity.ProgramCatalog
}

func NewContentHandler(render *usecase.RenderContentUseCase, programs entity.ProgramCatalog) *ContentHandler {
	return &ContentHandler{RenderUC: render, Programs: programs}
}

// Render (POST /content/render)
func (h *ContentHandler) Render(w http.ResponseWriter, r *http.Request) {
	var input usecase.RenderContentInput
	if !decodeJSON(w, r, &input, false) {
		return
	}

	out, err := h.RenderUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Placeholders (GET /content/placeholders?channel=&audience=&program=)
func (h *ContentHandler) Placeholders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := usecase.RenderContentInput{
		Channel:  entity.Channel(q.Get("channel")),
		Audience: entity.Audience(q.Get("audience")),
		Program:  q.Get("program"),
	}

	fields, err := h.RenderUC.Placeholders(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"placeholders": fields})
}

// ListPrograms (GET /programs)
func (h *ContentHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	keys := h.Programs.ProgramKeys()
	out := make([]entity.Program, 0, len(keys))
	for _, k := range keys {
		if p, ok := h.Programs.Program(k); ok {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
