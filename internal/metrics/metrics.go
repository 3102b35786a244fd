package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "airtickets"

var (
	Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticket_purchases_total",
		Help:      "Ticket purchase attempts by outcome.",
	}, []string{"outcome"})

	Cancellations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticket_cancellations_total",
		Help:      "Ticket cancellation attempts by outcome.",
	}, []string{"outcome"})

	FlightChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flight_changes_total",
		Help:      "Flight inventory administration by operation and outcome.",
	}, []string{"operation", "outcome"})

	SearchCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flight_search_cache_total",
		Help:      "Flight search cache lookups by result.",
	}, []string{"result"})

	HTTPRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

const (
	OutcomeSuccess       = "success"
	OutcomeUnavailable   = "unavailable"
	OutcomeNotCancelable = "not_cancelable"
	OutcomeWindowClosed  = "window_closed"
	OutcomeNotFound      = "not_found"
	OutcomeBlocked       = "blocked"
	OutcomeInvalid       = "invalid"
	OutcomeError         = "error"
)
