// Package metrics exposes Prometheus counters for triage activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TriageRuns counts completed triage runs by terminal outcome.
	TriageRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskpilot_triage_runs_total",
		Help: "Completed triage runs by outcome.",
	}, []string{"outcome"})

	// Actions counts dispatched classifier decisions by action kind.
	Actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskpilot_triage_actions_total",
		Help: "Dispatched classifier decisions by action.",
	}, []string{"action"})

	// Failures counts internal failures by stage.
	Failures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskpilot_triage_failures_total",
		Help: "Triage failures by stage.",
	}, []string{"stage"})
)
