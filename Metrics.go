package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "collabsheet"

const (
	EvaluationResultNumber  = "number"
	EvaluationResultError   = "error"
	EvaluationResultLiteral = "literal"

	UpdateOutcomeApplied = "applied"
	UpdateOutcomeStale   = "stale"

	BoundaryEvaluation = "evaluation"
	BoundaryBroadcast  = "broadcast"
	BoundaryStorage    = "storage"
)

type Metrics struct {
	Evaluations       *prometheus.CounterVec
	StateUpdates      *prometheus.CounterVec
	InvalidMessages   *prometheus.CounterVec
	PersistFailures   prometheus.Counter
	BroadcastFailures prometheus.Counter
}

// NewMetrics registers the collectors on reg. Every service container owns its own registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "evaluations_total",
			Help:      "Cell inputs evaluated, by result kind",
		}, []string{"result"}),

		StateUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "state_updates_total",
			Help:      "Update intents processed by the state store",
		}, []string{"source", "outcome"}),

		InvalidMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "invalid_messages_total",
			Help:      "Messages dropped by structural validation",
		}, []string{"boundary"}),

		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "persist_failures_total",
			Help:      "Failed snapshot saves",
		}),

		BroadcastFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "broadcast_failures_total",
			Help:      "Failed broadcast publishes",
		}),
	}
}
