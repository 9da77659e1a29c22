package thicket

import (
	"context"
	"math"

	"github.com/pbanos/thicket/dataset"
	"github.com/pbanos/thicket/feature"
	"github.com/pbanos/thicket/loss"
	"github.com/pbanos/thicket/queue"
	"github.com/pbanos/thicket/tree"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

/*
EvaluateSplit takes a slice of records, a criterion and a loss and returns
the purity gain of partitioning the records with the criterion: the
impurity of the records minus the impurities of both sides weighted by
their sizes. A split leaving a side empty has a gain of -Inf.

It returns ErrEmptyLeaf if there are no records.
*/
func EvaluateSplit(records []*dataset.Record, c feature.Criterion, l loss.Loss) (float64, error) {
	if len(records) == 0 {
		return 0, ErrEmptyLeaf
	}
	impurity, err := l.Impurity(records)
	if err != nil {
		return 0, err
	}
	return evaluateSplit(records, impurity, c, l, nil, nil)
}

// evaluateSplit uses the given slices as scratch space for the partition
func evaluateSplit(records []*dataset.Record, impurity float64, c feature.Criterion, l loss.Loss, a, b []*dataset.Record) (float64, error) {
	a, b = dataset.Partition(records, c, a[:0], b[:0])
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(-1), nil
	}
	aImpurity, err := l.Impurity(a)
	if err != nil {
		return 0, err
	}
	bImpurity, err := l.Impurity(b)
	if err != nil {
		return 0, err
	}
	n := float64(len(records))
	return impurity - (float64(len(a))/n*aImpurity + float64(len(b))/n*bImpurity), nil
}

/*
FindBestSplits takes a context, a slice of records, the indexes of the
fields that can be split on and a training strategy, and returns a queue
with a task for every split candidate, scored with the strategy's loss.
Tasks are not bound to any node: their Node is tree.NoNode.

For every field, the candidates depend on the range of its values among
the records:
  - a field with a single value gets one candidate with a gain of -Inf
  - an int field gets an Equal candidate for every integer in its range,
    unless the strategy has ContinuousInts set
  - otherwise the field gets a LessThan (or GreaterThan, if the strategy
    says so) candidate for each of Samples thresholds evenly spaced across
    the range, rounded and deduplicated for int fields

Fields are searched concurrently, up to ts.Workers at a time. Tasks with
the same gain pop in field order, then threshold order.

It returns ErrEmptyLeaf if there are no records.
*/
func FindBestSplits(ctx context.Context, records []*dataset.Record, fields []int, ts *TrainingStrategy) (*queue.Queue, error) {
	if len(records) == 0 {
		return nil, ErrEmptyLeaf
	}
	impurity, err := ts.Loss.Impurity(records)
	if err != nil {
		return nil, err
	}
	results := make([][]*queue.Task, len(fields))
	g, gctx := errgroup.WithContext(ctx)
	if ts.Workers > 0 {
		g.SetLimit(ts.Workers)
	}
	for i, f := range fields {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tasks, err := fieldSplits(records, f, impurity, ts)
			results[i] = tasks
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	q := queue.New()
	for _, tasks := range results {
		for _, t := range tasks {
			q.Push(t)
		}
	}
	ts.Metrics.CandidatesScored(q.Len())
	return q, nil
}

func fieldSplits(records []*dataset.Record, field int, impurity float64, ts *TrainingStrategy) ([]*queue.Task, error) {
	var criteria []feature.Criterion
	var degenerate bool
	comparator := feature.LessThan
	if ts.UseGreaterThan {
		comparator = feature.GreaterThan
	}
	if records[0].ValueAt(field).Kind() == feature.Int {
		lo, hi := intRange(records, field)
		degenerate = lo == hi
		switch {
		case degenerate:
		case ts.ContinuousInts:
			for _, threshold := range intThresholds(lo, hi, ts.Samples) {
				criteria = append(criteria, feature.NewCriterion(field, comparator, threshold))
			}
		default:
			criteria = equalCriteria(field, lo, hi)
		}
	} else {
		values := make([]float64, len(records))
		for i, r := range records {
			values[i] = r.ValueAt(field).Float()
		}
		low, high := floats.Min(values), floats.Max(values)
		degenerate = low == high
		if !degenerate {
			for _, threshold := range floatThresholds(low, high, ts.Samples) {
				criteria = append(criteria, feature.NewCriterion(field, comparator, threshold))
			}
		}
	}
	if degenerate {
		c := feature.NewCriterion(field, feature.Equal, records[0].ValueAt(field))
		return []*queue.Task{{Node: tree.NoNode, Criterion: c, Gain: math.Inf(-1)}}, nil
	}
	tasks := make([]*queue.Task, 0, len(criteria))
	a := make([]*dataset.Record, 0, len(records))
	b := make([]*dataset.Record, 0, len(records))
	for _, c := range criteria {
		gain, err := evaluateSplit(records, impurity, c, ts.Loss, a, b)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, &queue.Task{Node: tree.NoNode, Criterion: c, Gain: gain})
	}
	return tasks, nil
}

// intRange returns the exact minimum and maximum of an int field
func intRange(records []*dataset.Record, field int) (lo, hi int64) {
	lo, hi = records[0].ValueAt(field).Int(), records[0].ValueAt(field).Int()
	for _, r := range records[1:] {
		v := r.ValueAt(field).Int()
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// equalCriteria returns an Equal criterion for every integer in [lo, hi]
func equalCriteria(field int, lo, hi int64) []feature.Criterion {
	var criteria []feature.Criterion
	if span := uint64(hi) - uint64(lo); span < 1<<16 {
		criteria = make([]feature.Criterion, 0, span+1)
	}
	for v := lo; ; v++ {
		criteria = append(criteria, feature.NewCriterion(field, feature.Equal, feature.IntValue(v)))
		if v == hi {
			break
		}
	}
	return criteria
}

// floatThresholds returns samples values evenly spaced across [low, high],
// the midpoint for a single sample.
func floatThresholds(low, high float64, samples int) []feature.Value {
	var spaced []float64
	if samples == 1 {
		spaced = []float64{low + (high-low)/2}
	} else {
		spaced = floats.Span(make([]float64, samples), low, high)
	}
	values := make([]feature.Value, len(spaced))
	for i, s := range spaced {
		values[i] = feature.FloatValue(s)
	}
	return values
}

// intThresholds returns up to samples distinct integers evenly spaced
// across [lo, hi], rounded to the nearest integer, the midpoint for a single
// sample. Offsets from lo are unsigned as the span of a field may not fit
// in an int64.
func intThresholds(lo, hi int64, samples int) []feature.Value {
	span := uint64(hi) - uint64(lo)
	values := make([]feature.Value, 0, samples)
	for i := 0; i < samples; i++ {
		var offset uint64
		if samples == 1 {
			offset = span/2 + span%2
		} else {
			f := math.Round(float64(span) * float64(i) / float64(samples-1))
			if f >= float64(span) {
				offset = span
			} else {
				offset = uint64(f)
			}
		}
		v := feature.IntValue(int64(uint64(lo) + offset))
		if l := len(values); l > 0 && values[l-1].Equal(v) {
			continue
		}
		values = append(values, v)
	}
	return values
}
