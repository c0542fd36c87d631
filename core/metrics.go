package core

// metrics.go – prometheus collectors for the scheduler hot path. Collectors
// are created unregistered; nodes that expose metrics register them on their
// own registry via RegisterMetrics.

import (
	"github.com/prometheus/client_golang/prometheus"
)

type schedulerMetrics struct {
	batches       prometheus.Counter
	reexecutions  prometheus.Counter
	abortedRounds prometheus.Counter
	ownershipSize prometheus.Gauge
}

var metrics = newSchedulerMetrics()

func newSchedulerMetrics() *schedulerMetrics {
	return &schedulerMetrics{
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitaledger_scheduler_batches_total",
			Help: "Batches executed by the seamless scheduler",
		}),
		reexecutions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitaledger_scheduler_reexecutions_total",
			Help: "Speculative re-executions across all batches",
		}),
		abortedRounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitaledger_scheduler_conflict_rounds_total",
			Help: "Conflict-resolution rounds that aborted at least one transaction",
		}),
		ownershipSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vitaledger_scheduler_ownership_entries",
			Help: "Distinct ownership entries touched by the last batch",
		}),
	}
}

// RegisterMetrics attaches the scheduler collectors to r.
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		metrics.batches, metrics.reexecutions, metrics.abortedRounds, metrics.ownershipSize,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
