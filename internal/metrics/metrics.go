// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Estimates counts settled transport-time estimates by source
	// ("service" or "fallback").
	Estimates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripplanner_estimates_total",
		Help: "Settled transport-time estimates by source.",
	}, []string{"source"})

	// StaleEstimates counts estimates discarded because a newer request
	// for the same item was issued or the item was removed.
	StaleEstimates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripplanner_estimates_discarded_total",
		Help: "Estimates discarded as superseded or orphaned.",
	})

	// FlightLookups counts flight searches by outcome ("ok" or "failed").
	FlightLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripplanner_flight_lookups_total",
		Help: "Flight schedule lookups by outcome.",
	}, []string{"outcome"})

	// SynthesizedItems counts itinerary entries created from flight bookings.
	SynthesizedItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripplanner_synthesized_items_total",
		Help: "Itinerary entries synthesized from flight bookings.",
	})

	// PublishErrors counts trip events that could not be delivered.
	PublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripplanner_event_publish_errors_total",
		Help: "Trip events that failed to publish.",
	})

	// EstimateDuration observes how long the estimator took to answer.
	EstimateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tripplanner_estimate_duration_seconds",
		Help:    "Time spent waiting for transport-time estimates.",
		Buckets: prometheus.DefBuckets,
	})
)
