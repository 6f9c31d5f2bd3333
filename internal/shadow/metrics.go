package shadow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus counters for the engine, exported through the ops gateway's
// /metrics endpoint.
var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkshade_events_total",
		Help: "Lifecycle events processed, by kind.",
	}, []string{"kind"})

	eventErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkshade_event_errors_total",
		Help: "Lifecycle events that failed, by kind.",
	}, []string{"kind"})

	shadowsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkshade_shadows_created_total",
		Help: "Shadow messages sent.",
	})

	shadowsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkshade_shadows_updated_total",
		Help: "Shadow messages edited in place.",
	})

	shadowsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkshade_shadows_deleted_total",
		Help: "Shadow messages deleted.",
	})

	suppressionsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkshade_suppressions_applied_total",
		Help: "Native link previews suppressed on source messages.",
	})
)
