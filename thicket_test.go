package thicket

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/pbanos/thicket/dataset"
	"github.com/pbanos/thicket/feature"
	"github.com/pbanos/thicket/loss"
	"github.com/pbanos/thicket/metrics"
	"github.com/pbanos/thicket/tree"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func intDataset(t *testing.T, labels []string, values ...int64) *dataset.Dataset {
	t.Helper()
	records := make([]dataset.Record, len(values))
	for i, v := range values {
		records[i] = dataset.NewRecord(labels[i], feature.IntValue(v))
	}
	ds, err := dataset.New(records)
	require.NoError(t, err)
	return ds
}

// distinctDataset returns n records with distinct labels and values 1 to n
func distinctDataset(t *testing.T, n int) *dataset.Dataset {
	labels := make([]string, n)
	values := make([]int64, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("L%d", i)
		values[i] = int64(i + 1)
	}
	return intDataset(t, labels, values...)
}

func strategy(policy StoppingPolicy) *TrainingStrategy {
	ts := DefaultTrainingStrategy()
	ts.Policy = policy
	ts.ContinuousInts = false
	return ts
}

func grow(t *testing.T, ds *dataset.Dataset, ts *TrainingStrategy) *tree.Tree {
	t.Helper()
	tr, err := tree.New(ds)
	require.NoError(t, err)
	require.NoError(t, Train(context.Background(), tr, ts))
	return tr
}

// partitioned returns an error if the leaves of the tree do not partition
// the records exactly or a leaf is empty
func partitioned(tr *tree.Tree, records []*dataset.Record) error {
	seen := make(map[*dataset.Record]int)
	var leaves int
	err := tr.Traverse(false, func(id tree.NodeID, n tree.Node) error {
		switch n := n.(type) {
		case *tree.LeafNode:
			leaves++
			if len(n.Records()) == 0 {
				return fmt.Errorf("leaf %v is empty", id)
			}
			for _, r := range n.Records() {
				seen[r]++
			}
		case *tree.DecisionNode:
			for _, c := range []tree.NodeID{n.Left(), n.Right()} {
				child := tr.Node(c)
				if child == nil || child.ParentID() != id || child.Depth() != n.Depth()+1 {
					return fmt.Errorf("bad child %v of %v", c, id)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if leaves != tr.DecisionCount()+1 {
		return fmt.Errorf("%d leaves for %d decisions", leaves, tr.DecisionCount())
	}
	if len(seen) != len(records) {
		return fmt.Errorf("leaves hold %d records, expected %d", len(seen), len(records))
	}
	for _, r := range records {
		if seen[r] != 1 {
			return fmt.Errorf("record %v found %d times", r, seen[r])
		}
	}
	return nil
}

func TestEvaluateSplit(t *testing.T) {
	ds := intDataset(t, []string{"A", "A", "B", "B"}, 1, 2, 10, 11)
	refs := ds.Refs()

	gain, err := EvaluateSplit(refs, feature.NewCriterion(0, feature.LessThan, feature.IntValue(5)), loss.Entropy)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, gain, 1e-12)

	gain, err = EvaluateSplit(refs, feature.NewCriterion(0, feature.Equal, feature.IntValue(1)), loss.Entropy)
	require.NoError(t, err)
	expected := 1 - 0.75*(-(1.0/3)*math.Log2(1.0/3)-(2.0/3)*math.Log2(2.0/3))
	assert.InDelta(t, expected, gain, 1e-12)

	gain, err = EvaluateSplit(refs, feature.NewCriterion(0, feature.LessThan, feature.IntValue(50)), loss.GiniImpurity)
	require.NoError(t, err)
	assert.True(t, math.IsInf(gain, -1))

	_, err = EvaluateSplit(nil, feature.NewCriterion(0, feature.LessThan, feature.IntValue(50)), loss.Entropy)
	assert.ErrorIs(t, err, ErrEmptyLeaf)
}

func TestFindBestSplitsCandidates(t *testing.T) {
	ds, err := dataset.New([]dataset.Record{
		dataset.NewRecord("A", feature.IntValue(1), feature.FloatValue(0), feature.IntValue(7)),
		dataset.NewRecord("A", feature.IntValue(2), feature.FloatValue(1), feature.IntValue(7)),
		dataset.NewRecord("B", feature.IntValue(4), feature.FloatValue(2), feature.IntValue(7)),
	})
	require.NoError(t, err)
	refs := ds.Refs()

	ts := strategy(LeafCount(2))
	ts.Samples = 3
	q, err := FindBestSplits(context.Background(), refs, []int{0, 1, 2}, ts)
	require.NoError(t, err)
	byField := make(map[int][]string)
	for _, task := range q.Tasks() {
		assert.Equal(t, tree.NoNode, task.Node)
		byField[task.Criterion.Field] = append(byField[task.Criterion.Field], task.Criterion.String())
	}
	assert.ElementsMatch(t, []string{"[0] = 1", "[0] = 2", "[0] = 3", "[0] = 4"}, byField[0])
	assert.ElementsMatch(t, []string{"[1] < 0", "[1] < 1", "[1] < 2"}, byField[1])
	assert.Equal(t, []string{"[2] = 7"}, byField[2])
	last := q.Tasks()[q.Len()-1]
	assert.Equal(t, 2, last.Criterion.Field)
	assert.True(t, math.IsInf(last.Gain, -1))

	ts.ContinuousInts = true
	ts.UseGreaterThan = true
	ts.Samples = 1
	q, err = FindBestSplits(context.Background(), refs, []int{0}, ts)
	require.NoError(t, err)
	require.Equal(t, 1, q.Len())
	// midpoint of [1, 4] rounded
	assert.Equal(t, "[0] > 3", q.Peek().Criterion.String())

	ts.Samples = 10
	q, err = FindBestSplits(context.Background(), refs, []int{0}, ts)
	require.NoError(t, err)
	assert.Equal(t, 4, q.Len(), "int thresholds are deduplicated")
}

func TestFindBestSplitsExtremeInts(t *testing.T) {
	ds := intDataset(t, []string{"A", "B"}, math.MaxInt64-4096, math.MaxInt64)
	ts := strategy(LeafCount(2))
	q, err := FindBestSplits(context.Background(), ds.Refs(), []int{0}, ts)
	require.NoError(t, err)
	assert.Equal(t, 4097, q.Len())
	assert.InDelta(t, 1.0, q.Peek().Gain, 1e-9)
	tasks := q.Tasks()
	assert.Equal(t, feature.IntValue(math.MaxInt64), tasks[1].Criterion.Threshold)

	ds = intDataset(t, []string{"A", "B"}, math.MinInt64, math.MaxInt64)
	ts.ContinuousInts = true
	ts.Samples = 3
	q, err = FindBestSplits(context.Background(), ds.Refs(), []int{0}, ts)
	require.NoError(t, err)
	var thresholds []feature.Value
	for _, task := range q.Tasks() {
		thresholds = append(thresholds, task.Criterion.Threshold)
	}
	assert.ElementsMatch(t, []feature.Value{
		feature.IntValue(math.MinInt64),
		feature.IntValue(0),
		feature.IntValue(math.MaxInt64),
	}, thresholds)
	assert.InDelta(t, 1.0, q.Peek().Gain, 1e-9)
}

func TestFindBestSplitsIntsBeyondFloatPrecision(t *testing.T) {
	ds := intDataset(t, []string{"A", "B"}, 1<<53, 1<<53+1)
	for _, continuous := range []bool{false, true} {
		ts := strategy(LeafCount(2))
		ts.ContinuousInts = continuous
		q, err := FindBestSplits(context.Background(), ds.Refs(), []int{0}, ts)
		require.NoError(t, err)
		best := q.Peek()
		assert.InDelta(t, 1.0, best.Gain, 1e-9, "continuous ints: %v", continuous)
		tr := grow(t, ds, ts)
		assert.Equal(t, 2, tr.LeafCount())
	}
}

func TestFindBestSplitsTieOrder(t *testing.T) {
	ds := intDataset(t, []string{"A", "A", "B", "B"}, 1, 2, 10, 11)
	ts := strategy(LeafCount(2))
	q, err := FindBestSplits(context.Background(), ds.Refs(), []int{0}, ts)
	require.NoError(t, err)
	best := q.Pop()
	next := q.Pop()
	assert.Equal(t, best.Gain, next.Gain)
	assert.Equal(t, "[0] = 1", best.Criterion.String())
	assert.Equal(t, "[0] = 2", next.Criterion.String())
}

func TestFindBestSplitsErrors(t *testing.T) {
	ts := strategy(LeafCount(2))
	_, err := FindBestSplits(context.Background(), nil, []int{0}, ts)
	assert.ErrorIs(t, err, ErrEmptyLeaf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ds := intDataset(t, []string{"A", "B"}, 1, 2)
	_, err = FindBestSplits(ctx, ds.Refs(), []int{0}, ts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainPureDatasetNeverSplits(t *testing.T) {
	ds := intDataset(t, []string{"A", "A", "A", "A"}, 1, 5, 9, 12)
	for _, continuous := range []bool{false, true} {
		ts := strategy(FixedDecisions(5))
		ts.ContinuousInts = continuous
		tr := grow(t, ds, ts)
		assert.Equal(t, 0, tr.DecisionCount())
		assert.Equal(t, 1, tr.LeafCount())
	}
}

func TestTrainFixedDecisions(t *testing.T) {
	ds := distinctDataset(t, 8)
	for n := 0; n <= 10; n++ {
		tr := grow(t, ds, strategy(FixedDecisions(n)))
		expected := n
		if expected > 7 {
			expected = 7
		}
		assert.Equal(t, expected, tr.DecisionCount(), "FixedDecisions(%d)", n)
		require.NoError(t, partitioned(tr, ds.Refs()))
	}
}

func TestTrainLeafCount(t *testing.T) {
	ds := distinctDataset(t, 8)
	for k := 0; k <= 10; k++ {
		tr := grow(t, ds, strategy(LeafCount(k)))
		expected := k
		switch {
		case expected < 1:
			expected = 1
		case expected > 8:
			expected = 8
		}
		assert.Equal(t, expected, tr.LeafCount(), "LeafCount(%d)", k)
	}
}

func TestTrainMaxDepth(t *testing.T) {
	ds := distinctDataset(t, 8)
	for d := 0; d <= 3; d++ {
		tr := grow(t, ds, strategy(MaxDepth(d)))
		assert.LessOrEqual(t, tr.MaxDepth(), d)
		if d > 0 {
			assert.Equal(t, d, tr.MaxDepth())
		} else {
			assert.Equal(t, 0, tr.DecisionCount())
		}
		require.NoError(t, partitioned(tr, ds.Refs()))
	}
}

func TestTrainClassifies(t *testing.T) {
	ds := intDataset(t, []string{"A", "A", "B", "B"}, 1, 2, 10, 11)
	for _, continuous := range []bool{false, true} {
		ts := strategy(LeafCount(6))
		ts.ContinuousInts = continuous
		tr := grow(t, ds, ts)
		for i := 0; i < ds.Count(); i++ {
			label, err := tr.Classify(ds.Record(i))
			require.NoError(t, err)
			assert.Equal(t, ds.Record(i).Label(), label)
		}
		accuracy, err := tr.Test(ds.Refs())
		require.NoError(t, err)
		assert.Equal(t, 1.0, accuracy)
	}
}

func TestTrainToTwoLeaves(t *testing.T) {
	ds := intDataset(t, []string{"A", "A", "B", "B"}, 1, 2, 10, 11)
	ts := strategy(LeafCount(2))
	ts.ContinuousInts = true
	tr := grow(t, ds, ts)
	require.Equal(t, 2, tr.LeafCount())
	require.Equal(t, 1, tr.DecisionCount())
	dn, ok := tr.Node(tr.Root()).(*tree.DecisionNode)
	require.True(t, ok)
	assert.Equal(t, 0, dn.Criterion().Field)
	assert.Equal(t, feature.LessThan, dn.Criterion().Comparator)

	for value, expected := range map[int64]string{1: "A", 10: "B"} {
		r := dataset.NewRecord("?", feature.IntValue(value))
		label, err := tr.Classify(&r)
		require.NoError(t, err)
		assert.Equal(t, expected, label, "value %d", value)
	}
}

func TestTrainRespectsMinimumGain(t *testing.T) {
	ds := intDataset(t, []string{"A", "A", "B", "B"}, 1, 2, 10, 11)
	ts := strategy(LeafCount(6))
	ts.MinimumGain = 2
	tr := grow(t, ds, ts)
	assert.Equal(t, 0, tr.DecisionCount())
}

func TestTrainCancelled(t *testing.T) {
	ds := distinctDataset(t, 8)
	tr, err := tree.New(ds)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Train(ctx, tr, strategy(LeafCount(8)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, tr.LeafCount())
}

func TestTrainInvalidStrategy(t *testing.T) {
	tr, err := tree.New(distinctDataset(t, 2))
	require.NoError(t, err)
	invalid := []*TrainingStrategy{
		nil,
		{Samples: 10, Policy: LeafCount(2)},
		{Loss: loss.Entropy, Samples: 0, Policy: LeafCount(2)},
		{Loss: loss.Entropy, Samples: 1, Policy: LeafCount(-1)},
		{Loss: loss.Entropy, Samples: 1, Policy: StoppingPolicy{Factor: 9}},
		{Loss: loss.Entropy, Samples: 1, Workers: -1},
	}
	for _, ts := range invalid {
		assert.ErrorIs(t, Train(context.Background(), tr, ts), ErrInvalidStrategy)
	}
}

func TestParseLimitingFactor(t *testing.T) {
	for _, lf := range []LimitingFactor{Decisions, Depth, Leaves} {
		parsed, err := ParseLimitingFactor(lf.String())
		require.NoError(t, err)
		assert.Equal(t, lf, parsed)
	}
	_, err := ParseLimitingFactor("height")
	assert.ErrorIs(t, err, ErrInvalidStrategy)
}

func TestTrainMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts := strategy(LeafCount(8))
	ts.Metrics = metrics.NewCollector(reg)
	ds := intDataset(t, []string{"A", "B", "B", "C"}, 1, 2, 3, 4)
	tr := grow(t, ds, ts)
	assert.Equal(t, float64(tr.DecisionCount()), testutil.ToFloat64(ts.Metrics.Splits))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.Metrics.TreesTrained))
	assert.Positive(t, testutil.ToFloat64(ts.Metrics.SmallLeaves))
	assert.Positive(t, testutil.ToFloat64(ts.Metrics.CandidatesEvaluated))
}

func TestPartitionInvariantAfterEverySplit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "records")
		fields := rapid.IntRange(1, 3).Draw(t, "fields")
		records := make([]dataset.Record, n)
		for i := range records {
			values := make([]feature.Value, fields)
			for f := range values {
				if f%2 == 0 {
					values[f] = feature.IntValue(rapid.Int64Range(-5, 5).Draw(t, "int"))
				} else {
					values[f] = feature.FloatValue(rapid.Float64Range(-1, 1).Draw(t, "float"))
				}
			}
			records[i] = dataset.NewRecord(rapid.SampledFrom([]string{"x", "y", "z"}).Draw(t, "label"), values...)
		}
		ds, err := dataset.New(records)
		if err != nil {
			t.Fatalf("building dataset: %v", err)
		}
		ts := DefaultTrainingStrategy()
		ts.Samples = rapid.IntRange(1, 12).Draw(t, "samples")
		ts.ContinuousInts = rapid.Bool().Draw(t, "continuousInts")
		ts.UseGreaterThan = rapid.Bool().Draw(t, "useGreaterThan")
		if rapid.Bool().Draw(t, "gini") {
			ts.Loss = loss.GiniImpurity
		}
		tr, err := tree.New(ds)
		if err != nil {
			t.Fatalf("building tree: %v", err)
		}
		for k := 1; k <= n; k++ {
			ts.Policy = FixedDecisions(k)
			before := tr.DecisionCount()
			if err := Train(context.Background(), tr, ts); err != nil {
				t.Fatalf("training: %v", err)
			}
			if err := partitioned(tr, ds.Refs()); err != nil {
				t.Fatalf("after %d decisions: %v", tr.DecisionCount(), err)
			}
			if tr.DecisionCount() == before {
				break
			}
			if tr.DecisionCount() != before+1 {
				t.Fatalf("FixedDecisions(%d) took %d decisions from %d", k, tr.DecisionCount(), before)
			}
		}
	})
}
