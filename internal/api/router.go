package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"tokenbook/internal/auth"
)

type RouterConfig struct {
	Bookings  BookingService
	Admin     AdminService
	AdminAuth *AdminAuthHandler
	JWTSecret string

	// Optional pieces; nil disables them.
	BookLimiter func(http.Handler) http.Handler
	Page        http.Handler
	Metrics     http.Handler
	Health      func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) *mux.Router {
	userHandler := NewUserBookingHandler(cfg.Bookings)
	adminHandler := NewAdminHandler(cfg.Admin)

	r := mux.NewRouter()

	// Public endpoints
	var book http.Handler = http.HandlerFunc(userHandler.Book)
	if cfg.BookLimiter != nil {
		book = cfg.BookLimiter(book)
	}
	r.Handle("/api/book", book).Methods(http.MethodPost)
	r.HandleFunc("/api/check-token", userHandler.CheckToken).Methods(http.MethodPost)
	if cfg.AdminAuth != nil {
		r.HandleFunc("/api/admin/login", cfg.AdminAuth.Login).Methods(http.MethodPost)
		r.HandleFunc("/api/admin/logout", cfg.AdminAuth.Logout).Methods(http.MethodPost)
	}

	// Admin endpoints (protected)
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(cfg.JWTSecret))
	admin.HandleFunc("/disable-date", adminHandler.DisableDate).Methods(http.MethodPost)
	admin.HandleFunc("/close-today", adminHandler.CloseToday).Methods(http.MethodPost)
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods(http.MethodGet)
	admin.HandleFunc("/stats", adminHandler.Stats).Methods(http.MethodGet)

	if cfg.Health != nil {
		r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if err := cfg.Health(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("ok"))
		}).Methods(http.MethodGet)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}
	if cfg.Page != nil {
		r.PathPrefix("/").Handler(cfg.Page).Methods(http.MethodGet)
	}
	return r
}
