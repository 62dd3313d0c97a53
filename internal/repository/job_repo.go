package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"tokenbook/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// CompleteBookingsBefore marks confirmed bookings dated before the given day
// as completed, which frees their phone numbers for new bookings.
func (r *JobRepository) CompleteBookingsBefore(ctx context.Context, date string) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET status = $1 WHERE status = $2 AND booking_date < $3`,
		db.StatusCompleted, db.StatusConfirmed, date)
	if err != nil {
		return 0, fmt.Errorf("error completing past bookings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
		return 0, nil
	}
	return rowsAffected, nil
}

// PurgeAvailabilityBefore deletes availability rows older than date that never
// received a booking.
func (r *JobRepository) PurgeAvailabilityBefore(ctx context.Context, date string) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM availability WHERE avail_date < $1 AND booked_tokens = 0`, date)
	if err != nil {
		return 0, fmt.Errorf("error purging availability: %w", err)
	}
	return result.RowsAffected()
}
