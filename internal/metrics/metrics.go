// Package metrics exposes Prometheus instrumentation for the event
// loop and watcher subsystems, following the promauto registration
// style of internal/gateway/metrics/collector.go in the teacher repo.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asyncfs_ops_dispatched_total",
			Help: "Total number of filesystem operations registered with the loop.",
		},
		[]string{"kind"},
	)

	opsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asyncfs_ops_completed_total",
			Help: "Total number of filesystem operations that ran to completion.",
		},
		[]string{"kind", "outcome"},
	)

	opsCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asyncfs_ops_cancelled_total",
			Help: "Total number of filesystem operations cancelled before completion.",
		},
		[]string{"kind"},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "asyncfs_loop_ready_queue_depth",
			Help: "Number of micro-tasks in the loop's ready queue at the start of the most recent tick.",
		},
	)

	inFlightOps = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "asyncfs_loop_inflight_ops",
			Help: "Number of filesystem operations currently registered with the loop.",
		},
	)

	watcherEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asyncfs_watcher_events_total",
			Help: "Total number of filesystem change events emitted by watchers.",
		},
		[]string{"kind"},
	)
)

// IncOpsDispatched records one operation of kind being handed to the loop.
func IncOpsDispatched(kind string) { opsDispatched.WithLabelValues(kind).Inc() }

// IncOpsCompleted records one operation of kind finishing, successfully
// or not.
func IncOpsCompleted(kind string, success bool) {
	outcome := "error"
	if success {
		outcome = "ok"
	}
	opsCompleted.WithLabelValues(kind, outcome).Inc()
}

// IncOpsCancelled records one operation of kind being cancelled before
// completion.
func IncOpsCancelled(kind string) { opsCancelled.WithLabelValues(kind).Inc() }

// SetQueueDepth reports the ready-queue depth observed on the most
// recent tick.
func SetQueueDepth(n float64) { queueDepth.Set(n) }

// SetInFlightOps reports the number of operations currently registered
// with the loop.
func SetInFlightOps(n float64) { inFlightOps.Set(n) }

// IncWatcherEvent records one emitted watcher event of the given kind
// ("created", "modified", "deleted").
func IncWatcherEvent(kind string) { watcherEvents.WithLabelValues(kind).Inc() }
