package api

import (
	"context"
	"encoding/json"
	"net/http"

	"tokenbook/internal/auth"
	"tokenbook/internal/entities"
)

type AdminService interface {
	DisableDate(ctx context.Context, req entities.DisableDateRequest) (*entities.DisableDateResponse, error)
	CloseToday(ctx context.Context) (*entities.CloseTodayResponse, error)
	ListBookings(ctx context.Context, date, status string) ([]entities.BookingSummary, error)
	Stats(ctx context.Context) (entities.BookingStats, error)
}

type AdminHandler struct {
	Service AdminService
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func (h *AdminHandler) DisableDate(w http.ResponseWriter, r *http.Request) {
	var req entities.DisableDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure{Message: "Invalid request body"})
		return
	}
	resp, err := h.Service.DisableDate(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	logf(r, "Admin %s disabled bookings for %s", auth.AdminFromContext(r.Context()), req.Date)
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) CloseToday(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.CloseToday(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	logf(r, "Admin %s closed today: %s", auth.AdminFromContext(r.Context()), resp.Message)
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")
	bookings, err := h.Service.ListBookings(r.Context(), date, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
