package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "washpoint",
			Name:      "bookings_created_total",
			Help:      "Booking records created.",
		},
	)

	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "washpoint",
			Name:      "booking_validation_failures_total",
			Help:      "Rejected booking submissions by offending field.",
		},
		[]string{"field"},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "washpoint",
			Name:      "status_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"status"},
	)

	stageToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "washpoint",
			Name:      "stage_toggles_total",
			Help:      "Manual cleaning stage toggles by stage.",
		},
		[]string{"stage"},
	)

	cleaningsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "washpoint",
			Name:      "cleanings_completed_total",
			Help:      "Bookings whose six cleaning stages all reached done.",
		},
	)

	exportTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "washpoint",
			Name:      "export_tasks_total",
			Help:      "Export worker task outcomes.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingsCreated,
			validationFailures,
			statusTransitions,
			stageToggles,
			cleaningsCompleted,
			exportTasks,
		)
	})
}

func IncBookingCreated()            { bookingsCreated.Inc() }
func IncValidationFailure(f string) { validationFailures.WithLabelValues(f).Inc() }
func IncStatusTransition(s string)  { statusTransitions.WithLabelValues(s).Inc() }
func IncStageToggle(stage string)   { stageToggles.WithLabelValues(stage).Inc() }
func IncCleaningCompleted()         { cleaningsCompleted.Inc() }
func IncExportTask(outcome string)  { exportTasks.WithLabelValues(outcome).Inc() }
