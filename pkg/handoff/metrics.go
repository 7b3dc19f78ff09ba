package handoff

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HandoffsStored tracks stored handoffs
	HandoffsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comic_handoff_stored_total",
			Help: "Total number of detail handoffs stored",
		},
	)

	// HandoffsResolved tracks handoffs read back by the detail view
	HandoffsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comic_handoff_resolved_total",
			Help: "Total number of detail handoffs resolved",
		},
	)

	// HandoffMisses tracks unknown or expired tokens
	HandoffMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comic_handoff_misses_total",
			Help: "Total number of handoff lookups for unknown or expired tokens",
		},
	)

	// HandoffErrors tracks store operation errors
	HandoffErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comic_handoff_errors_total",
			Help: "Total number of handoff store operation errors",
		},
		[]string{"operation"}, // "put", "get", "delete"
	)
)
