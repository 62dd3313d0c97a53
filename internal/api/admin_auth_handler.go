package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"tokenbook/internal/auth"
	"tokenbook/internal/entities"
	apperrors "tokenbook/internal/errors"
	"tokenbook/internal/service"
)

type AdminAuthHandler struct {
	service      service.AdminAuthService
	secureCookie bool
}

func NewAdminAuthHandler(svc service.AdminAuthService, secureCookie bool) *AdminAuthHandler {
	return &AdminAuthHandler{service: svc, secureCookie: secureCookie}
}

// Login returns a token and also sets it as an HttpOnly cookie for the browser page.
func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			err = apperrors.ErrUnauthorized("Invalid username or password")
		}
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(service.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, entities.LoginResponse{Token: token})
}

func (h *AdminAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
