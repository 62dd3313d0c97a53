package api

import (
	"context"
	"encoding/json"
	"net/http"

	"tokenbook/internal/entities"
)

type BookingService interface {
	Book(ctx context.Context, req entities.BookingRequest) (*entities.BookingResponse, error)
	CheckToken(ctx context.Context, req entities.TokenCheckRequest) (*entities.TokenCheckResponse, error)
}

type UserBookingHandler struct {
	Service BookingService
}

func NewUserBookingHandler(svc BookingService) *UserBookingHandler {
	return &UserBookingHandler{Service: svc}
}

func (h *UserBookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure{Message: "Invalid request body"})
		return
	}
	resp, err := h.Service.Book(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserBookingHandler) CheckToken(w http.ResponseWriter, r *http.Request) {
	var req entities.TokenCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := h.Service.CheckToken(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
