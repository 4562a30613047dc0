package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Booking activity
var (
	// FinancialRecalculations counts rollup recomputations by result.
	FinancialRecalculations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "financial_recalculations_total",
			Help:      "DJ financial rollups recomputed",
		},
		[]string{"result"}, // success, error
	)

	AccessCodesIssued = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_codes_issued_total",
			Help:      "Producer access codes generated",
		},
	)

	// EmailsSent counts outbound mail by template and result.
	EmailsSent = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Emails handed to the provider",
		},
		[]string{"template", "result"}, // result: sent, skipped, invalid, rate_limited, error
	)

	RealtimeSubscribers = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_subscribers",
			Help:      "Open change-feed subscriptions",
		},
	)

	// RealtimeDropped counts changes not delivered because a subscriber's
	// buffer was full.
	RealtimeDropped = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_dropped_total",
			Help:      "Change notifications dropped for slow subscribers",
		},
	)
)

// RecordRecalculation is shaped for deferred use around a rollup.
func RecordRecalculation(err error) {
	if err != nil {
		FinancialRecalculations.WithLabelValues("error").Inc()
		return
	}
	FinancialRecalculations.WithLabelValues("success").Inc()
}

// RealtimeDrop is the Hub's drop callback.
func RealtimeDrop() {
	RealtimeDropped.Inc()
}
