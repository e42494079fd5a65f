// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "aggregation_duration_seconds",
			Help: "Duration of cross-partition application listings",
		},
	)

	PartitionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregation_partition_failures_total",
			Help: "Partition queries dropped from an aggregation result",
		},
		[]string{"source"},
	)

	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_transitions_total",
			Help: "Committed status transitions by source and target status",
		},
		[]string{"source", "status"},
	)

	TransitionConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_transition_conflicts_total",
			Help: "Transitions refused because the row was no longer pending",
		},
		[]string{"source"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Outcome notifications by channel and result",
		},
		[]string{"channel", "result"},
	)

	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Transition events dropped because the dispatcher queue was full",
		},
	)
)
