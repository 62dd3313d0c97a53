package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"tokenbook/internal/db"
	"tokenbook/internal/entities"
)

var (
	ErrDateUnavailable    = errors.New("date is not available for booking")
	ErrDateFull           = errors.New("all tokens for this date are booked")
	ErrPhoneAlreadyBooked = errors.New("phone already holds a confirmed booking")
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

// Book allocates the next token for date and stores the booking. The
// availability row is locked for the duration of the transaction, so two
// concurrent bookings for the same date never receive the same token.
func (r *BookingRepository) Book(ctx context.Context, name, phone, date string, defaultMaxTokens int) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting booking transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO availability (avail_date, max_tokens)
		VALUES ($1, $2)
		ON CONFLICT (avail_date) DO NOTHING`, date, defaultMaxTokens)
	if err != nil {
		return 0, fmt.Errorf("error creating availability for %s: %w", date, err)
	}

	var avail db.Availability
	err = tx.QueryRowContext(ctx, `
		SELECT is_available, max_tokens, booked_tokens
		FROM availability WHERE avail_date = $1
		FOR UPDATE`, date).Scan(&avail.IsAvailable, &avail.MaxTokens, &avail.BookedTokens)
	if err != nil {
		return 0, fmt.Errorf("error locking availability for %s: %w", date, err)
	}
	if !avail.IsAvailable {
		return 0, ErrDateUnavailable
	}
	if avail.BookedTokens >= avail.MaxTokens {
		return 0, ErrDateFull
	}
	token := avail.BookedTokens + 1

	_, err = tx.ExecContext(ctx, `UPDATE availability SET booked_tokens = booked_tokens + 1 WHERE avail_date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("error incrementing tokens for %s: %w", date, err)
	}

	var id int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO bookings (patient_name, phone, booking_date, token_number, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, name, phone, date, token, db.StatusConfirmed).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, ErrPhoneAlreadyBooked
		}
		return 0, fmt.Errorf("error inserting booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing booking: %w", err)
	}
	return token, nil
}

// LatestByPhone returns the most recent booking for phone, or nil when there is none.
func (r *BookingRepository) LatestByPhone(ctx context.Context, phone string) (*db.Booking, error) {
	var b db.Booking
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, patient_name, phone, booking_date, token_number, status, created_at
		FROM bookings
		WHERE phone = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, phone).Scan(&b.ID, &b.PatientName, &b.Phone, &b.BookingDate, &b.TokenNumber, &b.Status, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying booking for phone: %w", err)
	}
	return &b, nil
}

// DisableDate blocks date for new bookings. Existing token counters are kept.
func (r *BookingRepository) DisableDate(ctx context.Context, date string, defaultMaxTokens int) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO availability (avail_date, is_available, max_tokens)
		VALUES ($1, FALSE, $2)
		ON CONFLICT (avail_date) DO UPDATE SET is_available = FALSE`, date, defaultMaxTokens)
	if err != nil {
		return fmt.Errorf("error disabling %s: %w", date, err)
	}
	return nil
}

// CloseDate blocks date and cancels its confirmed bookings, returning the
// bookings that were cancelled.
func (r *BookingRepository) CloseDate(ctx context.Context, date string, defaultMaxTokens int) ([]db.Booking, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting close transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO availability (avail_date, is_available, max_tokens)
		VALUES ($1, FALSE, $2)
		ON CONFLICT (avail_date) DO UPDATE SET is_available = FALSE`, date, defaultMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error disabling %s: %w", date, err)
	}

	rows, err := tx.QueryContext(ctx, `
		UPDATE bookings SET status = $2
		WHERE booking_date = $1 AND status = $3
		RETURNING id, patient_name, phone, booking_date, token_number, status, created_at`,
		date, db.StatusCancelled, db.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("error cancelling bookings for %s: %w", date, err)
	}
	cancelled, err := scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing close of %s: %w", date, err)
	}
	return cancelled, nil
}

// List returns bookings ordered by date and token, optionally filtered.
func (r *BookingRepository) List(ctx context.Context, date, status string) ([]db.Booking, error) {
	query := `
	SELECT id, patient_name, phone, booking_date, token_number, status, created_at
	FROM bookings
	WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if date != "" {
		query += " AND booking_date = $" + strconv.Itoa(idx)
		args = append(args, date)
		idx++
	}
	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	query += " ORDER BY booking_date DESC, token_number"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	return scanBookings(rows)
}

func (r *BookingRepository) Stats(ctx context.Context, today string) (entities.BookingStats, error) {
	var s entities.BookingStats
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE booking_date = $1),
			COUNT(*) FILTER (WHERE status = $2)
		FROM bookings`, today, db.StatusCancelled).Scan(&s.Total, &s.Today, &s.Cancelled)
	if err != nil {
		return s, fmt.Errorf("error computing booking stats: %w", err)
	}
	return s, nil
}

func scanBookings(rows *sql.Rows) ([]db.Booking, error) {
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(&b.ID, &b.PatientName, &b.Phone, &b.BookingDate, &b.TokenNumber, &b.Status, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating bookings: %w", err)
	}
	return bookings, nil
}
