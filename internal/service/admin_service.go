package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tokenbook/internal/entities"
	apperrors "tokenbook/internal/errors"
	"tokenbook/internal/httpx"
	"tokenbook/internal/metrics"
	"tokenbook/internal/utils"
)

type AdminService struct {
	Repo     BookingStore
	notifier Notifier
	rules    Rules
	now      func() time.Time
}

func NewAdminService(repo BookingStore, notifier Notifier, rules Rules) *AdminService {
	if rules.Location == nil {
		rules.Location = time.Local
	}
	return &AdminService{Repo: repo, notifier: notifier, rules: rules, now: time.Now}
}

// DisableDate blocks new bookings on the given day.
func (s *AdminService) DisableDate(ctx context.Context, req entities.DisableDateRequest) (*entities.DisableDateResponse, error) {
	date := strings.TrimSpace(req.Date)
	day, err := utils.ParseDate(date, s.rules.Location)
	if err != nil {
		return nil, apperrors.ErrBadRequest("Invalid date format")
	}
	if day.Before(utils.StartOfDay(s.now(), s.rules.Location)) {
		return nil, apperrors.ErrBadRequest("Cannot disable a past date")
	}

	if err := s.Repo.DisableDate(ctx, date, s.rules.MaxTokensPerDay); err != nil {
		log.Printf("[%s] Error disabling date %s: %v", httpx.RequestIDFromContext(ctx), date, err)
		return nil, fmt.Errorf("disable date failed: %w", err)
	}
	metrics.IncDateDisabled()
	log.Printf("Bookings disabled for %s", date)
	return &entities.DisableDateResponse{
		Success: true,
		Message: "Bookings disabled for " + date,
	}, nil
}

// CloseToday blocks today and cancels every confirmed booking for it.
func (s *AdminService) CloseToday(ctx context.Context) (*entities.CloseTodayResponse, error) {
	today := utils.Today(s.now(), s.rules.Location)

	cancelled, err := s.Repo.CloseDate(ctx, today, s.rules.MaxTokensPerDay)
	if err != nil {
		log.Printf("[%s] Error closing %s: %v", httpx.RequestIDFromContext(ctx), today, err)
		return nil, fmt.Errorf("close today failed: %w", err)
	}
	metrics.AddBookingsCancelled(len(cancelled))
	log.Printf("Closed %s, cancelled %d bookings", today, len(cancelled))

	if s.notifier != nil {
		for _, b := range cancelled {
			s.notifier.BookingCancelled(b)
		}
		s.notifier.DayClosed(today, cancelled)
	}

	return &entities.CloseTodayResponse{
		Message: fmt.Sprintf("Clinic closed for today. %d booking(s) cancelled.", len(cancelled)),
	}, nil
}

func (s *AdminService) ListBookings(ctx context.Context, date, status string) ([]entities.BookingSummary, error) {
	bookings, err := s.Repo.List(ctx, date, status)
	if err != nil {
		return nil, err
	}
	out := make([]entities.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, entities.BookingSummary{
			ID:        b.ID,
			Name:      b.PatientName,
			Phone:     b.Phone,
			Date:      b.BookingDate.Format(utils.DateLayout),
			Token:     b.TokenNumber,
			Status:    b.Status,
			CreatedAt: b.CreatedAt,
		})
	}
	return out, nil
}

func (s *AdminService) Stats(ctx context.Context) (entities.BookingStats, error) {
	return s.Repo.Stats(ctx, utils.Today(s.now(), s.rules.Location))
}
