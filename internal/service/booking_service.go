package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tokenbook/internal/db"
	"tokenbook/internal/entities"
	apperrors "tokenbook/internal/errors"
	"tokenbook/internal/httpx"
	"tokenbook/internal/metrics"
	"tokenbook/internal/repository"
	"tokenbook/internal/utils"
)

// BookingStore is the persistence the booking and admin services need.
type BookingStore interface {
	Book(ctx context.Context, name, phone, date string, defaultMaxTokens int) (int, error)
	LatestByPhone(ctx context.Context, phone string) (*db.Booking, error)
	DisableDate(ctx context.Context, date string, defaultMaxTokens int) error
	CloseDate(ctx context.Context, date string, defaultMaxTokens int) ([]db.Booking, error)
	List(ctx context.Context, date, status string) ([]db.Booking, error)
	Stats(ctx context.Context, today string) (entities.BookingStats, error)
}

// Notifier delivers patient and admin messages. Implementations must not block.
type Notifier interface {
	BookingConfirmed(b db.Booking)
	BookingCancelled(b db.Booking)
	DayClosed(date string, cancelled []db.Booking)
}

// Rules holds the clinic booking policy.
type Rules struct {
	Location        *time.Location
	MaxTokensPerDay int
	CutoffHour      int
	CountryCode     string
}

type BookingService struct {
	Repo     BookingStore
	notifier Notifier
	rules    Rules
	now      func() time.Time
}

func NewBookingService(repo BookingStore, notifier Notifier, rules Rules) *BookingService {
	if rules.Location == nil {
		rules.Location = time.Local
	}
	return &BookingService{Repo: repo, notifier: notifier, rules: rules, now: time.Now}
}

// Book validates req and allocates the next token for the requested day.
func (s *BookingService) Book(ctx context.Context, req entities.BookingRequest) (*entities.BookingResponse, error) {
	name := strings.TrimSpace(req.Name)
	phone := utils.NormalizePhone(req.Phone, s.rules.CountryCode)
	date := strings.TrimSpace(req.Date)

	if name == "" || phone == "" || date == "" {
		metrics.IncBookingAttempt("invalid")
		return nil, apperrors.ErrBadRequest("Name, phone and date are required")
	}
	if !utils.IsValidPhone(phone) {
		metrics.IncBookingAttempt("invalid")
		return nil, apperrors.ErrBadRequest("Phone number must have 10 digits")
	}
	if err := s.checkBookingDate(date); err != nil {
		metrics.IncBookingAttempt("invalid")
		return nil, err
	}

	token, err := s.Repo.Book(ctx, name, phone, date, s.rules.MaxTokensPerDay)
	switch {
	case errors.Is(err, repository.ErrPhoneAlreadyBooked):
		metrics.IncBookingAttempt("duplicate")
		return nil, apperrors.ErrConflict("This phone number is already registered for a token.")
	case errors.Is(err, repository.ErrDateUnavailable):
		metrics.IncBookingAttempt("unavailable")
		return nil, apperrors.ErrConflict("Bookings are closed for " + date)
	case errors.Is(err, repository.ErrDateFull):
		metrics.IncBookingAttempt("full")
		return nil, apperrors.ErrConflict("All tokens for " + date + " are booked")
	case err != nil:
		metrics.IncBookingAttempt("error")
		log.Printf("[%s] Error booking token for %s: %v", httpx.RequestIDFromContext(ctx), date, err)
		return nil, fmt.Errorf("booking failed: %w", err)
	}

	metrics.IncBookingAttempt("success")
	booking := db.Booking{PatientName: name, Phone: phone, TokenNumber: token, Status: db.StatusConfirmed}
	booking.BookingDate, _ = utils.ParseDate(date, s.rules.Location)
	if s.notifier != nil {
		s.notifier.BookingConfirmed(booking)
	}

	return &entities.BookingResponse{
		Success: true,
		Token:   token,
		Date:    date,
		Message: fmt.Sprintf("Token #%d booked for %s", token, date),
	}, nil
}

func (s *BookingService) checkBookingDate(date string) error {
	day, err := utils.ParseDate(date, s.rules.Location)
	if err != nil {
		return apperrors.ErrBadRequest("Invalid date format")
	}
	now := s.now().In(s.rules.Location)
	today := utils.StartOfDay(now, s.rules.Location)
	if day.Before(today) {
		return apperrors.ErrBadRequest("Cannot book for past dates")
	}
	if day.Equal(today) && now.Hour() >= s.rules.CutoffHour {
		return apperrors.ErrBadRequest("Today's booking window is closed")
	}
	return nil
}

// CheckToken returns the latest booking for phone.
func (s *BookingService) CheckToken(ctx context.Context, req entities.TokenCheckRequest) (*entities.TokenCheckResponse, error) {
	phone := utils.NormalizePhone(req.Phone, s.rules.CountryCode)
	if phone == "" {
		return nil, apperrors.ErrBadRequest("Phone is required")
	}

	b, err := s.Repo.LatestByPhone(ctx, phone)
	if err != nil {
		log.Printf("[%s] Error checking token: %v", httpx.RequestIDFromContext(ctx), err)
		return nil, fmt.Errorf("token lookup failed: %w", err)
	}
	metrics.IncTokenCheck(b != nil)
	if b == nil {
		return &entities.TokenCheckResponse{Found: false}, nil
	}
	return &entities.TokenCheckResponse{
		Found:  true,
		Name:   b.PatientName,
		Date:   b.BookingDate.Format(utils.DateLayout),
		Token:  b.TokenNumber,
		Status: b.Status,
	}, nil
}
