package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tokenbook",
			Name:      "booking_attempts_total",
			Help:      "Count of booking attempts by result.",
		},
		[]string{"result"},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tokenbook",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled by closing a day.",
		},
	)

	tokenChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tokenbook",
			Name:      "token_check_total",
			Help:      "Count of token lookups by outcome.",
		},
		[]string{"found"},
	)

	datesDisabled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tokenbook",
			Name:      "dates_disabled_total",
			Help:      "Count of dates blocked by an admin.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingCancelled, tokenChecks, datesDisabled)
	})
}

func IncBookingAttempt(result string) {
	bookingCreated.WithLabelValues(result).Inc()
}

func AddBookingsCancelled(n int) {
	bookingCancelled.Add(float64(n))
}

func IncTokenCheck(found bool) {
	if found {
		tokenChecks.WithLabelValues("true").Inc()
		return
	}
	tokenChecks.WithLabelValues("false").Inc()
}

func IncDateDisabled() {
	datesDisabled.Inc()
}
