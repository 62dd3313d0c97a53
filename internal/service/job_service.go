package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"tokenbook/internal/utils"
)

// availabilityRetention is how long unused availability rows are kept.
const availabilityRetention = 30 * 24 * time.Hour

type JobStore interface {
	CompleteBookingsBefore(ctx context.Context, date string) (int64, error)
	PurgeAvailabilityBefore(ctx context.Context, date string) (int64, error)
}

type JobService struct {
	Repo JobStore
	loc  *time.Location
	now  func() time.Time
}

func NewJobService(repo JobStore, loc *time.Location) *JobService {
	if loc == nil {
		loc = time.Local
	}
	return &JobService{Repo: repo, loc: loc, now: time.Now}
}

// DailyReset completes bookings from previous days and drops stale
// availability rows. Token counters are per day, so nothing else is reset.
func (s *JobService) DailyReset(ctx context.Context) error {
	log.Println("Cron Job: running daily reset...")
	now := s.now()
	today := utils.Today(now, s.loc)

	completed, err := s.Repo.CompleteBookingsBefore(ctx, today)
	if err != nil {
		return fmt.Errorf("cron job: failed to complete past bookings: %w", err)
	}
	log.Printf("Cron Job: marked %d bookings before %s as completed", completed, today)

	cutoff := utils.Today(now.Add(-availabilityRetention), s.loc)
	purged, err := s.Repo.PurgeAvailabilityBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cron job: failed to purge availability: %w", err)
	}
	log.Printf("Cron Job: purged %d unused availability rows before %s", purged, cutoff)
	return nil
}

// Schedule registers DailyReset on c using a standard five-field cron spec.
func (s *JobService) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.DailyReset(ctx); err != nil {
			log.Printf("%v", err)
		}
	})
}
