/*
Package metrics provides the Prometheus metrics reported while growing
trees and forests.
*/
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
Collector holds the metrics of a training process. All its methods can be
called on a nil *Collector, in which case they do nothing, so training code
does not need to check whether metrics are enabled.
*/
type Collector struct {
	Splits              prometheus.Counter
	CandidatesEvaluated prometheus.Counter
	SmallLeaves         prometheus.Counter
	RejectedSplits      *prometheus.CounterVec
	TreesTrained        prometheus.Counter
	TrainingDuration    prometheus.Histogram
}

/*
NewCollector takes a registerer and returns a Collector with its metrics
registered on it. It panics if the metrics are already registered, so use a
single Collector per registerer.
*/
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Splits: f.NewCounter(prometheus.CounterOpts{
			Name: "thicket_splits_total",
			Help: "number of leaves split into decision nodes",
		}),
		CandidatesEvaluated: f.NewCounter(prometheus.CounterOpts{
			Name: "thicket_split_candidates_evaluated_total",
			Help: "number of split candidates scored",
		}),
		SmallLeaves: f.NewCounter(prometheus.CounterOpts{
			Name: "thicket_small_leaves_total",
			Help: "number of times a leaf was skipped for having fewer than 2 records",
		}),
		RejectedSplits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "thicket_rejected_splits_total",
			Help: "number of split tasks discarded, by reason",
		}, []string{"reason"}),
		TreesTrained: f.NewCounter(prometheus.CounterOpts{
			Name: "thicket_trees_trained_total",
			Help: "number of trees whose growth finished",
		}),
		TrainingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "thicket_tree_training_seconds",
			Help:    "time taken to grow a tree",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// Split counts a successful split
func (c *Collector) Split() {
	if c == nil {
		return
	}
	c.Splits.Inc()
}

// CandidatesScored counts n scored split candidates
func (c *Collector) CandidatesScored(n int) {
	if c == nil {
		return
	}
	c.CandidatesEvaluated.Add(float64(n))
}

// SmallLeaf counts a leaf skipped for having fewer than 2 records
func (c *Collector) SmallLeaf() {
	if c == nil {
		return
	}
	c.SmallLeaves.Inc()
}

// Rejected counts a discarded split task with the given reason
func (c *Collector) Rejected(reason string) {
	if c == nil {
		return
	}
	c.RejectedSplits.WithLabelValues(reason).Inc()
}

// TreeTrained counts a finished tree and observes the time it took
func (c *Collector) TreeTrained(d time.Duration) {
	if c == nil {
		return
	}
	c.TreesTrained.Inc()
	c.TrainingDuration.Observe(d.Seconds())
}
