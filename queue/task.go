package queue

import (
	"fmt"

	"github.com/pbanos/thicket/feature"
	"github.com/pbanos/thicket/tree"
)

// Task represents the split of a leaf of a tree.Tree
// on a criterion.
type Task struct {
	// The leaf to be split. It may have become
	// stale by the time the task is popped.
	Node tree.NodeID
	// The criterion to split the leaf's records on
	Criterion feature.Criterion
	// The purity gain of the split
	Gain float64

	seq uint64
}

func (t *Task) String() string {
	return fmt.Sprintf("{Task %v %v gain:%.4f}", t.Node, t.Criterion, t.Gain)
}
