package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vote outcomes used as the "outcome" label
const (
	outcomeRecorded      = "recorded"
	outcomeAlreadyVoted  = "already_voted"
	outcomeRejected      = "rejected"
	outcomeStorageFailed = "storage_failure"
)

var (
	// votesSubmitted counts vote submissions.
	// Labels: outcome (recorded, already_voted, rejected, storage_failure)
	votesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lunchvote",
		Subsystem: "votes",
		Name:      "submitted_total",
		Help:      "Total vote submissions by outcome",
	}, []string{"outcome"})

	// duplicateVotesRaced counts duplicates that passed the pre-check and
	// were caught by the storage constraint.
	duplicateVotesRaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lunchvote",
		Subsystem: "votes",
		Name:      "duplicate_races_total",
		Help:      "Duplicate votes detected by the storage uniqueness constraint",
	})

	// pollsCreated counts created polls
	pollsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lunchvote",
		Subsystem: "polls",
		Name:      "created_total",
		Help:      "Total polls created",
	})

	// storeLatency measures poll store calls.
	// Labels: operation
	storeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lunchvote",
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Poll store operation latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"operation"})
)

func observeStore(operation string, start time.Time) {
	storeLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
