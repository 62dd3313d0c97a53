package db

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

type Availability struct {
	Date         time.Time
	IsAvailable  bool
	MaxTokens    int
	BookedTokens int
}

type Booking struct {
	ID          int
	PatientName string
	Phone       string
	BookingDate time.Time
	TokenNumber int
	Status      string
	CreatedAt   time.Time
}

type Admin struct {
	ID           int
	Username     string
	PasswordHash string
}
