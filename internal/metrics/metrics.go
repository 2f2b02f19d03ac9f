package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lak_travelers",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by listing type.",
		},
		[]string{"listing_type"},
	)

	bookingStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lak_travelers",
			Name:      "booking_status_changed_total",
			Help:      "Count of booking status transitions by target status.",
		},
		[]string{"status"},
	)

	reviewSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lak_travelers",
			Name:      "review_submitted_total",
			Help:      "Count of reviews submitted by listing type.",
		},
		[]string{"listing_type"},
	)

	plannerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lak_travelers",
			Name:      "planner_requests_total",
			Help:      "Count of AI planner requests by outcome.",
		},
		[]string{"outcome"},
	)

	uploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lak_travelers",
			Name:      "upload_bytes_total",
			Help:      "Bytes of images stored.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingStatus, reviewSubmitted, plannerRequests, uploadBytes)
	})
}

func IncBookingCreated(listingType string) {
	bookingCreated.WithLabelValues(listingType).Inc()
}

func IncBookingStatus(status string) {
	bookingStatus.WithLabelValues(status).Inc()
}

func IncReviewSubmitted(listingType string) {
	reviewSubmitted.WithLabelValues(listingType).Inc()
}

// IncPlanner records a planner call; outcome is "generated", "cached" or "error".
func IncPlanner(outcome string) {
	plannerRequests.WithLabelValues(outcome).Inc()
}

func AddUploadBytes(n int64) {
	uploadBytes.Add(float64(n))
}
