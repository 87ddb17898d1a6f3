package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var domainStatus = map[string]int{
	usecase.CodeValidation:        http.StatusBadRequest,
	usecase.CodeNotFound:          http.StatusNotFound,
	usecase.CodeInvalidTransition: http.StatusConflict,
	usecase.CodeSlotTaken:         http.StatusConflict,
	usecase.CodeUnknownProgram:    http.StatusUnprocessableEntity,
	usecase.CodeTemplateNotFound:  http.StatusUnprocessableEntity,
	usecase.CodeMissingField:      http.StatusUnprocessableEntity,
	usecase.CodeUnsupported:       http.StatusUnprocessableEntity,
	usecase.CodeInvalidAmount:     http.StatusUnprocessableEntity,
	usecase.CodeLimitExceeded:     http.StatusUnprocessableEntity,
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ Erro ao escrever resposta: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status, ok := domainStatus[de.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, ErrorResponse{Code: de.Code, Message: de.Message, Field: de.Field})
		return
	}

	switch {
	case errors.Is(err, entity.ErrJobNotFound),
		errors.Is(err, entity.ErrLeadNotFound),
		errors.Is(err, entity.ErrCampaignNotFound),
		errors.Is(err, entity.ErrPaymentNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Code: usecase.CodeNotFound, Message: err.Error()})
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Code: usecase.CodeInternal, Message: "request cancelled"})
		return
	}

	code := usecase.CodeInternal
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		code = te.Code
	}
	log.Printf("❌ %s: %v", code, err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Code: code, Message: "internal error"})
}

func badRequest(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: usecase.CodeValidation, Message: message, Field: field})
}

// decodeJSON decodes the request body into v. An empty body is accepted when
// optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	badRequest(w, "", "invalid JSON: "+err.Error())
	return false
}
