package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CompensationFailures counts compensation steps that themselves failed.
// A non-zero value means orphaned external state exists and needs manual
// reconciliation; alert on any increase.
var CompensationFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "booking_compensation_failures_total",
		Help: "Saga compensation steps that failed, by step.",
	},
	[]string{"step"},
)

var BookingsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bookings_total",
		Help: "Booking attempts by outcome.",
	},
	[]string{"outcome"},
)

var CalendarSyncsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "calendar_syncs_total",
		Help: "Calendar sync runs by outcome (ok, degraded, failed, skipped).",
	},
	[]string{"outcome"},
)

var ExternalEventDeleteFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "external_event_delete_failures_total",
		Help: "Best-effort external event deletions that failed after cancellation.",
	},
)
