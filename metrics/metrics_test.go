package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.Split()
	c.Split()
	c.CandidatesScored(7)
	c.SmallLeaf()
	c.Rejected("stale")
	c.Rejected("policy")
	c.Rejected("policy")
	c.TreeTrained(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Splits))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.CandidatesEvaluated))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SmallLeaves))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.RejectedSplits.WithLabelValues("policy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TreesTrained))

	n, err := testutil.GatherAndCount(reg, "thicket_tree_training_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Split()
		c.CandidatesScored(3)
		c.SmallLeaf()
		c.Rejected("stale")
		c.TreeTrained(time.Second)
	})
}
