package entities

import "time"

type DisableDateRequest struct {
	Date string `json:"date"`
}

type DisableDateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type CloseTodayResponse struct {
	Message string `json:"message"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// BookingSummary is one row of the admin booking listing.
type BookingSummary struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Date      string    `json:"date"`
	Token     int       `json:"token"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingStats struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	Cancelled int `json:"cancelled"`
}
