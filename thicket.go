/*
Package thicket grows decision trees best-first: on every iteration, the
split with the highest purity gain among all the leaves of the tree is
performed, until a stopping policy says the tree is complete or no split
is worth performing.
*/
package thicket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pbanos/thicket/queue"
	"github.com/pbanos/thicket/tree"
)

// Error represents an error growing a tree
type Error string

const (
	// ErrEmptyLeaf is returned when searching splits for no records
	ErrEmptyLeaf = Error("cannot split a leaf without records")
	// ErrInvalidStrategy is returned when a training strategy cannot
	// be used to grow a tree
	ErrInvalidStrategy = Error("invalid training strategy")
)

func (e Error) Error() string {
	return string(e)
}

const (
	rejectedStale   = "stale"
	rejectedPolicy  = "policy"
	rejectedGain    = "gain"
	rejectedInvalid = "invalid"
)

/*
Train takes a context, a tree and a training strategy and grows the tree
according to the strategy. On every iteration, the best split candidate of
each leaf with at least 2 records is ranked, and the best ranked candidate
that the stopping policy allows and whose gain exceeds the strategy's
MinimumGain is performed. Candidates of leaves that were not split are
kept for the following iterations.

Growth stops when the stopping policy says so or when no candidate can be
performed, in which case Train returns nil. The context is checked once per
iteration; if it is done, Train returns its error, leaving the tree valid
but partially grown. Train returns an ErrInvalidStrategy error if the
strategy does not validate.
*/
func Train(ctx context.Context, t *tree.Tree, ts *TrainingStrategy) error {
	err := ts.Validate()
	if err != nil {
		return err
	}
	start := time.Now()
	log := ts.Logger
	candidates := make(map[tree.NodeID]*queue.Task)
	for ts.Policy.continues(t) {
		err = ctx.Err()
		if err != nil {
			return err
		}
		q := queue.New()
		for _, id := range t.Leaves() {
			task, ok := candidates[id]
			if !ok {
				task, err = bestSplit(ctx, t, id, ts)
				if err != nil {
					return err
				}
				candidates[id] = task
			}
			if task != nil {
				q.Push(task)
			}
		}
		performed := false
		for task := q.Pop(); task != nil && !performed; task = q.Pop() {
			performed, err = performSplit(t, task, ts)
			if err != nil {
				return err
			}
			if performed {
				delete(candidates, task.Node)
			}
		}
		if !performed {
			log.Debug().Int("leaves", t.LeafCount()).Int("decisions", t.DecisionCount()).Msg("no split candidates left")
			break
		}
	}
	ts.Metrics.TreeTrained(time.Since(start))
	log.Debug().Int("leaves", t.LeafCount()).Int("decisions", t.DecisionCount()).Int("depth", t.MaxDepth()).Dur("took", time.Since(start)).Msg("tree grown")
	return nil
}

// bestSplit returns the best split candidate for the given leaf, or nil if
// the leaf has fewer than 2 records.
func bestSplit(ctx context.Context, t *tree.Tree, id tree.NodeID, ts *TrainingStrategy) (*queue.Task, error) {
	leaf := t.Leaf(id)
	if len(leaf.Records()) < 2 {
		ts.Logger.Debug().Stringer("leaf", id).Int("records", len(leaf.Records())).Msg("leaf too small to split")
		ts.Metrics.SmallLeaf()
		return nil, nil
	}
	q, err := FindBestSplits(ctx, leaf.Records(), t.Fields(), ts)
	if err != nil {
		return nil, fmt.Errorf("searching splits for leaf %v: %w", id, err)
	}
	task := q.Pop()
	if task != nil {
		task.Node = id
	}
	return task, nil
}

// performSplit returns whether the task's split was performed on the tree
func performSplit(t *tree.Tree, task *queue.Task, ts *TrainingStrategy) (bool, error) {
	leaf := t.Leaf(task.Node)
	var reason string
	switch {
	case leaf == nil:
		reason = rejectedStale
	case !ts.Policy.allows(leaf):
		reason = rejectedPolicy
	case !(task.Gain > ts.MinimumGain):
		reason = rejectedGain
	}
	if reason == "" {
		_, err := t.Split(task.Node, task.Criterion)
		if errors.Is(err, tree.ErrInvalidSplit) {
			reason = rejectedInvalid
		} else if err != nil {
			return false, err
		}
	}
	if reason != "" {
		ts.Logger.Debug().Stringer("task", task).Str("reason", reason).Msg("split discarded")
		ts.Metrics.Rejected(reason)
		return false, nil
	}
	ts.Logger.Debug().Stringer("task", task).Int("leaves", t.LeafCount()).Msg("leaf split")
	ts.Metrics.Split()
	return true, nil
}
