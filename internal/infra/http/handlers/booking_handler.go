package handlers

import (
	"net/http"

	"github.com/xavierca1/sitm-outreach/internal/entity"
	"github.com/xavierca1/sitm-outreach/internal/usecase"
)

type BookingHandler struct {
	BookUC *usecase.BookAppointmentUseCase
}

func NewBookingHandler(uc *usecase.BookAppointmentUseCase) *BookingHandler {
	return &BookingHandler{BookUC: uc}
}

type SlotsResponse struct {
	Date     string                  `json:"date"`
	Free     []string                `json:"free"`
	Services []entity.BookingService `json:"services"`
}

// Book (POST /bookings)
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var input usecase.BookAppointmentInput
	if !decodeJSON(w, r, &input, false) {
		return
	}

	booking, err := h.BookUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// Slots (GET /bookings/slots?date=YYYY-MM-DD)
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	free, err := h.BookUC.AvailableSlots(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SlotsResponse{Date: date, Free: free, Services: entity.BookingServices})
}
